package core

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetHistoryLimit() int
}

type PromptConfig interface {
	GetSystemPath() string
	GetIdentityPath() string
}
