package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	tmpDir := t.TempDir()
	credsPath := filepath.Join(tmpDir, "credentials.json")

	svc, err := New(credsPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})

	return svc, credsPath
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	credsPath := filepath.Join(tmpDir, "credentials.json")

	svc, err := New(credsPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() {
		_ = svc.Close()
	}()

	if _, err := os.Stat(credsPath); err != nil {
		t.Errorf("credentials file was not created: %v", err)
	}
}

func TestAdd(t *testing.T) {
	svc, _ := newTestService(t)

	cred := models.Credential{
		Name:     "work",
		Provider: models.ProviderCopilot,
	}

	if err := svc.Add(cred); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	creds := svc.All()
	if len(creds) != 1 {
		t.Fatalf("All() returned %d credentials, want 1", len(creds))
	}
	if creds[0].Name != "work" {
		t.Errorf("credential name = %q, want %q", creds[0].Name, "work")
	}
	if creds[0].AddedAt.IsZero() {
		t.Error("credential AddedAt should be auto-set")
	}
}

func TestAdd_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)

	cred := models.Credential{Name: "work", Provider: models.ProviderKiro}

	if err := svc.Add(cred); err != nil {
		t.Fatalf("first Add() failed: %v", err)
	}

	if err := svc.Add(cred); err == nil {
		t.Fatal("Add() should fail for duplicate name")
	}

	if svc.Count() != 1 {
		t.Errorf("duplicate credential should not be added")
	}
}

func TestByProvider(t *testing.T) {
	svc, _ := newTestService(t)

	creds := []models.Credential{
		{Name: "copilot-work", Provider: models.ProviderCopilot},
		{Name: "copilot-home", Provider: models.ProviderCopilot},
		{Name: "kiro-work", Provider: models.ProviderKiro},
	}
	for _, c := range creds {
		if err := svc.Add(c); err != nil {
			t.Fatalf("Add(%s) failed: %v", c.Name, err)
		}
	}

	copilot := svc.ByProvider(models.ProviderCopilot)
	if len(copilot) != 2 {
		t.Errorf("ByProvider(copilot) returned %d, want 2", len(copilot))
	}
	kiro := svc.ByProvider(models.ProviderKiro)
	if len(kiro) != 1 {
		t.Errorf("ByProvider(kiro) returned %d, want 1", len(kiro))
	}
	if kiro[0].Name != "kiro-work" {
		t.Errorf("ByProvider(kiro)[0] = %s, want kiro-work", kiro[0].Name)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Add(models.Credential{Name: "work", Provider: models.ProviderCopilot}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	updated := models.Credential{Name: "work", Provider: models.ProviderCopilot, Label: "Work account"}
	if err := svc.Update(updated); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if got := svc.Get("work"); got == nil || got.Label != "Work account" {
		t.Errorf("Get() after update = %+v, want label set", got)
	}
	if got := svc.Get("work"); got != nil && got.AddedAt.IsZero() {
		t.Error("Update() should preserve AddedAt")
	}

	if err := svc.Delete("work"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count() after delete = %d, want 0", svc.Count())
	}

	if err := svc.Delete("work"); err == nil {
		t.Error("Delete() of missing credential should fail")
	}
}

func TestReload(t *testing.T) {
	svc, credsPath := newTestService(t)

	// Write a new file behind the service's back
	file := CredentialsFile{
		Credentials: []models.Credential{
			{Name: "added-externally", Provider: models.ProviderKiro, AddedAt: time.Now()},
		},
		Version: 1,
	}
	data, err := json.Marshal(file)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := os.WriteFile(credsPath, data, 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	svc.Reload()

	// Reload is async; wait for the finished event
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == EventReloadFinished {
				if svc.Loading() {
					t.Error("Loading() should be false after reload finishes")
				}
				if svc.Get("added-externally") == nil {
					t.Error("reload should pick up external changes")
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestParseCredentials_LegacyArray(t *testing.T) {
	data := []byte(`[{"name": "old", "provider": "copilot"}]`)
	creds, err := parseCredentials(data)
	if err != nil {
		t.Fatalf("parseCredentials() failed: %v", err)
	}
	if len(creds) != 1 || creds[0].Name != "old" {
		t.Errorf("parseCredentials() = %+v, want one legacy entry", creds)
	}
}

func TestFileChangeDetection(t *testing.T) {
	svc, credsPath := newTestService(t)

	file := CredentialsFile{
		Credentials: []models.Credential{{Name: "watched", Provider: models.ProviderCopilot}},
		Version:     1,
	}
	data, _ := json.Marshal(file)
	if err := os.WriteFile(credsPath, data, 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == EventCredentialsChanged {
				if svc.Get("watched") == nil {
					t.Error("watcher reload should pick up the new credential")
				}
				return
			}
		case <-deadline:
			t.Skip("file watcher event not observed (slow filesystem)")
		}
	}
}
