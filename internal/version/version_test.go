package version

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestGitStub is not a real test. It plays the git binary for tests
// that swap execCommand.
func TestGitStub(t *testing.T) {
	if os.Getenv("VERSION_GIT_STUB") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) < 3 || args[0] != "git" {
		os.Exit(1)
	}

	switch args[2] {
	case "--always":
		if os.Getenv("VERSION_STUB_NO_COMMIT") == "1" {
			os.Exit(1)
		}
		os.Stdout.WriteString("abc1234\n")
	case "--tags":
		if os.Getenv("VERSION_STUB_NO_TAG") == "1" {
			os.Exit(1)
		}
		os.Stdout.WriteString("v2.3.0\n")
	}
}

// stubGit routes execCommand through TestGitStub for the duration of
// the test and resets the cached values around it.
func stubGit(t *testing.T, env ...string) {
	t.Helper()

	orig := execCommand
	execCommand = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestGitStub", "--", name}, arg...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append([]string{"VERSION_GIT_STUB=1"}, env...)
		return cmd
	}
	t.Cleanup(func() {
		execCommand = orig
		Reset()
	})
	Reset()
}

func TestInfo_ResolvesFromGit(t *testing.T) {
	stubGit(t)

	if got := GetVersion(); got != "v2.3.0" {
		t.Errorf("GetVersion() = %q, want v2.3.0", got)
	}
	if got := GetCommit(); got != "abc1234" {
		t.Errorf("GetCommit() = %q, want abc1234", got)
	}

	info := Info()
	if !strings.HasPrefix(info, "quotadeck ") {
		t.Errorf("Info() = %q, want quotadeck prefix", info)
	}
	if !strings.Contains(info, "v2.3.0") || !strings.Contains(info, "abc1234") {
		t.Errorf("Info() = %q, missing version or commit", info)
	}
}

func TestInfo_FallsBackWhenGitUnavailable(t *testing.T) {
	stubGit(t, "VERSION_STUB_NO_COMMIT=1", "VERSION_STUB_NO_TAG=1")

	if got := GetVersion(); got != "dev" {
		t.Errorf("GetVersion() = %q, want dev", got)
	}
	if got := GetCommit(); got != "unknown" {
		t.Errorf("GetCommit() = %q, want unknown", got)
	}
}

func TestInfo_TagMissingCommitPresent(t *testing.T) {
	stubGit(t, "VERSION_STUB_NO_TAG=1")

	if got := GetVersion(); got != "dev" {
		t.Errorf("GetVersion() = %q, want dev", got)
	}
	if got := GetCommit(); got != "abc1234" {
		t.Errorf("GetCommit() = %q, want abc1234", got)
	}
}

func TestInfo_LdflagsTakePriority(t *testing.T) {
	stubGit(t)

	Version = "9.9.9"
	Commit = "deadbeef"
	Date = "2026-01-01"

	if got := GetVersion(); got != "9.9.9" {
		t.Errorf("GetVersion() = %q, want the injected 9.9.9", got)
	}
	if got := GetCommit(); got != "deadbeef" {
		t.Errorf("GetCommit() = %q, want the injected deadbeef", got)
	}
	if got := GetDate(); got != "2026-01-01" {
		t.Errorf("GetDate() = %q, want the injected date", got)
	}
}

func TestGetDate_DefaultsToToday(t *testing.T) {
	stubGit(t)

	if GetDate() == "" {
		t.Error("GetDate() should never be empty")
	}
}
