package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devlastu/pingstat/cli"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t          *testing.T
	tmpDir     string
	dbPath     string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	configPath := filepath.Join(tmpDir, "config.yaml")

	configYAML := fmt.Sprintf(`server:
  listen_addr: "127.0.0.1:0"
storage:
  path: %s
session:
  timeout: 30m
  timezone: UTC
`, dbPath)

	err := os.WriteFile(configPath, []byte(configYAML), 0o600)
	require.NoError(t, err)

	return &testEnv{
		t:          t,
		tmpDir:     tmpDir,
		dbPath:     dbPath,
		configPath: configPath,
	}
}

func (env *testEnv) run(args ...string) (stdout, stderr string, err error) {
	env.t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)

	fullArgs := append([]string{"--config", env.configPath}, args...)
	rootCmd.SetArgs(fullArgs)
	err = rootCmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}

// writeJSONL writes the given lines as a JSONL file and returns its path.
func (env *testEnv) writeJSONL(name string, lines ...string) string {
	env.t.Helper()

	path := filepath.Join(env.tmpDir, name)
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
	require.NoError(env.t, err)
	return path
}

func pingLine(eventID, ts int64, userID, gameID string) string {
	return fmt.Sprintf(`{"event_id":%d,"event_timestamp":%d,"event_type":"session_ping","event_data":{"user_id":%q,"game_id":%q}}`,
		eventID, ts, userID, gameID)
}

func registrationLine(eventID, ts int64, userID, country, deviceOS string) string {
	return fmt.Sprintf(`{"event_id":%d,"event_timestamp":%d,"event_type":"registration","event_data":{"user_id":%q,"country":%q,"device_os":%q}}`,
		eventID, ts, userID, country, deviceOS)
}
