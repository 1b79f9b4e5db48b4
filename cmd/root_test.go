package cmd

import (
	"testing"
)

func TestDebugFlagDefaultTrue(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("debug")
	if flag == nil {
		t.Fatal("--debug flag not found")
	}
	if flag.DefValue != "true" {
		t.Errorf("--debug default = %q, want %q", flag.DefValue, "true")
	}
}

func TestQuietFlagExists(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	if flag == nil {
		t.Fatal("--quiet flag not found")
	}
	if flag.DefValue != "false" {
		t.Errorf("--quiet default = %q, want %q", flag.DefValue, "false")
	}
	if flag.Shorthand != "q" {
		t.Errorf("--quiet shorthand = %q, want %q", flag.Shorthand, "q")
	}
}

func TestServerFlagExists(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("server")
	if flag == nil {
		t.Fatal("--server flag not found")
	}
	if flag.DefValue != "" {
		t.Errorf("--server default = %q, want empty", flag.DefValue)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"generate", "clean"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestInitConfig_DefaultDebugEnabled(t *testing.T) {
	// Save and restore package state
	origDebug, origQuiet := debugMode, quietMode
	defer func() { debugMode, quietMode = origDebug, origQuiet }()

	debugMode = true
	quietMode = false

	// Should not panic
	initConfig()
}

func TestInitConfig_QuietOverridesDebug(t *testing.T) {
	origDebug, origQuiet := debugMode, quietMode
	defer func() { debugMode, quietMode = origDebug, origQuiet }()

	debugMode = true
	quietMode = true

	// Should not panic - quiet should take precedence
	initConfig()
}

func TestLoadConfig_ServerOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("IMAGINE_SERVER_URL", "")
	orig := serverURL
	defer func() { serverURL = orig }()

	serverURL = "https://images.example.test"
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.GetServerURL() != serverURL {
		t.Errorf("server = %q, want %q", cfg.GetServerURL(), serverURL)
	}

	serverURL = "ftp://nope"
	if _, err := loadConfig(); err == nil {
		t.Error("expected an invalid --server to be rejected")
	}
}

func TestVersionTemplate(t *testing.T) {
	origV, origC, origD := version, commit, date
	defer SetVersionInfo(origV, origC, origD)

	SetVersionInfo("1.2.3", "none", "")
	if got := versionTemplate(); got != "imagine 1.2.3\n" {
		t.Errorf("versionTemplate() = %q", got)
	}

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	if got := versionTemplate(); got != "imagine 1.2.3\n  commit: abc123\n  built:  2026-01-01\n" {
		t.Errorf("versionTemplate() = %q", got)
	}
}
