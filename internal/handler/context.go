package handler

type ContextKey string

var (
	ExamPeriodCtx ContextKey = "examPeriod"
	SupervisorCtx ContextKey = "supervisor"
	SessionCtx    ContextKey = "session"
)
