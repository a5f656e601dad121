package domain

import "fmt"

// Hash fields of the productivity hash.
const (
	FieldAvgCompletionMs = "tempo_medio_conclusao_ms"
	FieldCountCompleted  = "total_concluidas"
	fieldCreatedPrefix   = "tarefas_criadas_"
)

func StatusKey(userID string, status Status) string {
	return fmt.Sprintf("user:%s:tasks:status:%s", userID, status)
}

func TagRankingKey(userID string) string {
	return fmt.Sprintf("user:%s:tags:top", userID)
}

func CompletedOnKey(userID, date string) string {
	return fmt.Sprintf("user:%s:tasks:completed:%s", userID, date)
}

func ProductivityKey(userID string) string {
	return fmt.Sprintf("user:%s:stats:productivity", userID)
}

func ProductivitySumKey(userID string) string {
	return ProductivityKey(userID) + ":sum_ms"
}

func ProductivityCountKey(userID string) string {
	return ProductivityKey(userID) + ":count"
}

// CreatedOnField is the productivity hash field counting tasks created on date.
func CreatedOnField(date string) string {
	return fieldCreatedPrefix + date
}
