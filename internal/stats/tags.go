package stats

import "github.com/emiliopalmerini/taskpulse/internal/domain"

// TagRanking owns the user:{id}:tags:top ranked set.
type TagRanking struct{}

// ApplyTagDiff scores tags added between oldTags and newTags up by one and
// removed tags down by one. Equal sets produce no ops.
func (TagRanking) ApplyTagDiff(userID string, oldTags, newTags []string) []domain.Op {
	oldSet := toSet(domain.NormalizeTags(oldTags))
	newNorm := domain.NormalizeTags(newTags)
	newSet := toSet(newNorm)

	key := domain.TagRankingKey(userID)
	var ops []domain.Op
	for _, tag := range newNorm {
		if _, ok := oldSet[tag]; !ok {
			ops = append(ops, tagOp(userID, key, tag, 1))
		}
	}
	for _, tag := range domain.NormalizeTags(oldTags) {
		if _, ok := newSet[tag]; !ok {
			ops = append(ops, tagOp(userID, key, tag, -1))
		}
	}
	return ops
}

func tagOp(userID, key, tag string, delta int64) domain.Op {
	return domain.Op{
		Kind:    domain.OpZIncr,
		Manager: domain.ManagerTags,
		UserID:  userID,
		Key:     key,
		Member:  tag,
		Delta:   delta,
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
