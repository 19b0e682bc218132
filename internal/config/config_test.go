package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir = suite.T().TempDir()
	require.NoError(suite.T(), os.Chdir(suite.tempDir))

	suite.T().Setenv("HOME", suite.tempDir)
	suite.T().Setenv("OPENAI_API_KEY", "")
	suite.T().Setenv("ANTHROPIC_API_KEY", "")
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := Load("")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "sqlite3", cfg.Database.Driver)
	assert.Equal(suite.T(), "todos.db", cfg.Database.DSN)
	assert.Equal(suite.T(), "openai", cfg.LLM.Provider)
	assert.Equal(suite.T(), 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(suite.T(), "Enter your query: ", cfg.Agent.Prompt)
	assert.Equal(suite.T(), 10, cfg.Agent.MaxSteps)
	assert.Equal(suite.T(), 1, cfg.Agent.MaxReplyRetries)
	assert.Equal(suite.T(), "memory", cfg.History.Backend)
	assert.Equal(suite.T(), 50, cfg.History.MaxMessages)
	assert.Equal(suite.T(), 24*time.Hour, cfg.History.Redis.TTL)
	assert.Equal(suite.T(), ":8100", cfg.HTTP.Addr)
}

func (suite *ConfigTestSuite) TestLoadConfigFromFile() {
	path := filepath.Join(suite.tempDir, "custom.yaml")
	content := `
database:
  driver: postgres
  dsn: postgres://localhost/todos
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
  timeout: 5s
history:
  backend: redis
  max_messages: 8
`
	require.NoError(suite.T(), os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "postgres", cfg.Database.Driver)
	assert.Equal(suite.T(), "anthropic", cfg.LLM.Provider)
	assert.Equal(suite.T(), 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(suite.T(), "redis", cfg.History.Backend)
	assert.Equal(suite.T(), 8, cfg.History.MaxMessages)
	assert.Equal(suite.T(), 10, cfg.Agent.MaxSteps)
}

func (suite *ConfigTestSuite) TestLoadConfigFromDefaultFile() {
	content := "agent:\n  max_steps: 3\n"
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.tempDir, "todo-agent.yaml"), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, cfg.Agent.MaxSteps)
}

func (suite *ConfigTestSuite) TestMissingExplicitFileFails() {
	_, err := Load(filepath.Join(suite.tempDir, "nope.yaml"))
	assert.Error(suite.T(), err)
}

func (suite *ConfigTestSuite) TestEnvironmentOverrides() {
	suite.T().Setenv("TODO_AGENT_DATABASE_DSN", "/tmp/other.db")
	suite.T().Setenv("TODO_AGENT_HISTORY_MAX_MESSAGES", "12")

	cfg, err := Load("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "/tmp/other.db", cfg.Database.DSN)
	assert.Equal(suite.T(), 12, cfg.History.MaxMessages)
}

func (suite *ConfigTestSuite) TestAPIKeyFallsBackToProviderVariable() {
	suite.T().Setenv("OPENAI_API_KEY", "sk-openai")
	cfg, err := Load("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "sk-openai", cfg.LLM.APIKey)

	suite.T().Setenv("TODO_AGENT_LLM_PROVIDER", "anthropic")
	suite.T().Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg, err = Load("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "sk-ant", cfg.LLM.APIKey)

	suite.T().Setenv("TODO_AGENT_LLM_API_KEY", "explicit")
	cfg, err = Load("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "explicit", cfg.LLM.APIKey)
}

func (suite *ConfigTestSuite) TestValidation() {
	suite.T().Setenv("TODO_AGENT_AGENT_MAX_STEPS", "0")
	_, err := Load("")
	assert.Error(suite.T(), err)
}

func TestValidateRejectsUnknownHistoryBackend(t *testing.T) {
	cfg := Config{
		Agent:   AgentConfig{MaxSteps: 1},
		History: HistoryConfig{Backend: "memcached", MaxMessages: 1},
	}
	assert.Error(t, cfg.Validate())
}
