package domain

import "time"

// SyncType define o tipo de sincronização de campanhas
type SyncType string

const (
	SyncTypeFull        SyncType = "FULL"
	SyncTypeIncremental SyncType = "INCREMENTAL"
)

// ParseSyncType converte uma string em SyncType, aceitando maiúsculas e minúsculas
func ParseSyncType(s string) (SyncType, bool) {
	switch s {
	case "FULL", "full":
		return SyncTypeFull, true
	case "INCREMENTAL", "incremental":
		return SyncTypeIncremental, true
	}
	return "", false
}

// SyncJobStatus representa o estado de um job de sincronização
type SyncJobStatus string

const (
	SyncJobPending         SyncJobStatus = "PENDING"
	SyncJobRunning         SyncJobStatus = "RUNNING"
	SyncJobSucceeded       SyncJobStatus = "SUCCEEDED"
	SyncJobFailedRetryable SyncJobStatus = "FAILED_RETRYABLE"
	SyncJobFailedTerminal  SyncJobStatus = "FAILED_TERMINAL"
)

// SyncWindow delimita o intervalo de datas coberto por um job
type SyncWindow struct {
	Start time.Time
	End   time.Time
}

// SyncJob é a unidade de trabalho do agendador: uma sincronização de um
// par (time, plataforma) para uma janela de datas. Reexecutar o mesmo job
// para a mesma janela é seguro porque as escritas são upserts idempotentes.
type SyncJob struct {
	TeamID      string
	Platform    Platform
	SyncType    SyncType
	Window      SyncWindow
	Status      SyncJobStatus
	Attempts    int
	FailReason  string
	RecordCount int
}
