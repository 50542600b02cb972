package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewSelfUpdateCmd(t *testing.T) {
	selfUpdateCmd := newSelfUpdateCmd()

	if selfUpdateCmd.Use != "self-update" {
		t.Errorf("Expected Use to be 'self-update', got %s", selfUpdateCmd.Use)
	}
	if selfUpdateCmd.Short == "" || selfUpdateCmd.Long == "" {
		t.Error("Expected Short and Long descriptions to be set")
	}
	if selfUpdateCmd.RunE == nil {
		t.Error("Expected RunE function to be set")
	}
}

func TestRunSelfUpdateRefusesDevelopmentVersions(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	for _, version := range []string{"dev", ""} {
		t.Run("version "+version, func(t *testing.T) {
			rootCmd.Version = version

			err := runSelfUpdate(nil, nil)
			if err == nil {
				t.Fatal("Expected an error for a development version")
			}
			if !strings.Contains(err.Error(), "cannot self-update a development version") {
				t.Errorf("Expected specific error message, got: %s", err.Error())
			}
		})
	}
}

func TestSelfUpdateCommandHelp(t *testing.T) {
	selfUpdateCmd := newSelfUpdateCmd()
	var buf bytes.Buffer
	selfUpdateCmd.SetOut(&buf)
	selfUpdateCmd.SetErr(&buf)
	selfUpdateCmd.SetArgs([]string{"--help"})

	if err := selfUpdateCmd.Execute(); err != nil {
		t.Fatalf("Error executing self-update help: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Checks for the latest release of mtctl") {
		t.Errorf("Help output should contain long description. Got: %q", output)
	}
}

func TestSelfUpdateRejectsArguments(t *testing.T) {
	selfUpdateCmd := newSelfUpdateCmd()
	selfUpdateCmd.SetOut(&bytes.Buffer{})
	selfUpdateCmd.SetErr(&bytes.Buffer{})
	selfUpdateCmd.SetArgs([]string{"v1.0.0"})

	if err := selfUpdateCmd.Execute(); err == nil {
		t.Error("Expected an error for unexpected arguments")
	}
}

func TestGithubRepoSlug(t *testing.T) {
	if githubRepoSlug != "mtctl-dev/mtctl" {
		t.Errorf("Unexpected githubRepoSlug %s", githubRepoSlug)
	}
}
