package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"sigs.k8s.io/yaml"
)

func TestReportUpdate(t *testing.T) {
	var report Report

	report.Update(&LogEntry{SessionStart: &SessionStart{Source: "terminal", Interactive: true}})
	report.Update(&LogEntry{RunCommand: &RunCommand{Command: []string{"ls"}, ResolvedCommandPath: "/bin/ls"}})
	report.Update(&LogEntry{ProcessExit: &ProcessExit{CommandName: "ls", PID: 4210, Status: 0}})
	report.Update(&LogEntry{RunCommand: &RunCommand{Command: []string{"sleep", "1"}, ResolvedCommandPath: "/bin/sleep", Background: true}})
	report.Update(&LogEntry{ProcessExit: &ProcessExit{CommandName: "sleep", PID: 4211, Status: 0, Background: true}})
	report.Update(&LogEntry{UnknownCommand: &UnknownCommand{Command: []string{"wat"}}})
	report.Update(&LogEntry{})

	assert.Equal(t, 7, report.LogEntries)
	assert.Equal(t, 1, report.Session.Count)
	assert.Equal(t, 1, report.RunCommand.ForegroundCount)
	assert.Equal(t, 1, report.RunCommand.BackgroundCount)
	assert.Equal(t, 1, report.ProcessExit.ForegroundCount)
	assert.Equal(t, 1, report.ProcessExit.BackgroundCount)
}

func TestPathCounterMarshalJSON(t *testing.T) {
	ctr := NewPathCounter("command", "status")
	ctr.Increment("ls", "exit 0")
	ctr.Increment("ls", "exit 0")
	ctr.Increment("cat", "exit 1")

	out, err := json.Marshal(ctr)
	assert.Nil(t, err)
	assert.Equal(t,
		`[{"count":2,"event":{"command":"ls","status":"exit 0"}},{"count":1,"event":{"command":"cat","status":"exit 1"}}]`,
		string(out))
}

func TestStrCounterMarshalJSON(t *testing.T) {
	var ctr StrCounter
	ctr.Increment("a")
	ctr.Increment("a")
	ctr.Increment("b")

	out, err := json.Marshal(ctr)
	assert.Nil(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(out))
}

func TestReportGolden(t *testing.T) {
	fd, err := os.Open(filepath.Join("testdata", "events.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()

	var report Report
	assert.Nil(t, ReadJSONLinesLog(fd, report.Update))

	out, err := yaml.Marshal(report)
	assert.Nil(t, err)

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)
	g.Assert(t, "report", out)
}
