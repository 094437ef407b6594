package config

// Config holds all configuration for the application.
type Config struct {
	JournalDBName string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Firestore     FirestoreConfig
	CorpusPath    string
	ProjectID     string
}
type SlackConfig struct {
	Token     string
	ChannelID string
}
type FirestoreConfig struct {
	DatabaseID string
}
