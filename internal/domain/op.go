package domain

import "fmt"

// OpKind identifies the counter store primitive an Op maps to.
type OpKind string

const (
	// OpIncr adds Delta to a plain counter.
	OpIncr OpKind = "incr"
	// OpGuardedDecr decrements a plain counter by one unless it is already at zero.
	OpGuardedDecr OpKind = "guarded_decr"
	// OpZIncr adds Delta to Member's score in a ranked set.
	OpZIncr OpKind = "zincr"
	// OpHIncr adds Delta to Member (a field) of a hash.
	OpHIncr OpKind = "hincr"
	// OpRecomputeAvg rewrites a user's average completion time from the sum and count counters.
	OpRecomputeAvg OpKind = "recompute_avg"
)

// Manager names the component that owns an Op's key namespace.
type Manager string

const (
	ManagerStatus       Manager = "status"
	ManagerTags         Manager = "tags"
	ManagerTimeline     Manager = "timeline"
	ManagerProductivity Manager = "productivity"
)

// Op is one counter mutation derived from a lifecycle event.
type Op struct {
	Kind    OpKind
	Manager Manager
	UserID  string
	Key     string
	Member  string
	Delta   int64
}

func (o Op) String() string {
	switch o.Kind {
	case OpZIncr, OpHIncr:
		return fmt.Sprintf("%s %s[%s] %+d", o.Kind, o.Key, o.Member, o.Delta)
	case OpGuardedDecr, OpRecomputeAvg:
		return fmt.Sprintf("%s %s", o.Kind, o.Key)
	default:
		return fmt.Sprintf("%s %s %+d", o.Kind, o.Key, o.Delta)
	}
}
