package main

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "casebridge/pkg/domain-errors"
)

const (
	seedPath = "../../internal/refdata/store/memory/testdata/seed.yaml"
	ebsCase  = "../../internal/casesource/testdata/case_ebs.json"
	soaCase  = "../../internal/casesource/testdata/case_soa.json"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func memoryBackendEnv(t *testing.T, seed string) {
	t.Helper()
	t.Setenv("CASEBRIDGE_REFDATA_BACKEND", "memory")
	t.Setenv("CASEBRIDGE_REFDATA_SEED", seed)
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("AUDIT_DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
}

type builtContext struct {
	ApplicationType struct {
		Code string `json:"code"`
	}
	DevolvedPowers struct {
		Used bool
	}
	AmendmentProceedingsInEbs []json.RawMessage
	Proceedings               []json.RawMessage
	PriorAuthorities          []json.RawMessage
}

func TestBuildCommand(t *testing.T) {
	memoryBackendEnv(t, seedPath)

	for _, tc := range []struct {
		format string
		path   string
	}{
		{"ebs", ebsCase},
		{"soa", soaCase},
	} {
		t.Run(tc.format, func(t *testing.T) {
			stdout, _, err := execute(t, "build", "--case", tc.path, "--format", tc.format)
			require.NoError(t, err)

			var got builtContext
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, "SUBDP", got.ApplicationType.Code)
			assert.True(t, got.DevolvedPowers.Used)
			assert.Len(t, append(got.AmendmentProceedingsInEbs, got.Proceedings...), 2)
			assert.Len(t, got.PriorAuthorities, 1)
		})
	}
}

func TestBuildCommand_Pretty(t *testing.T) {
	memoryBackendEnv(t, seedPath)

	stdout, _, err := execute(t, "build", "--case", ebsCase, "--pretty")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n  \"")
}

func TestBuildCommand_Errors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		memoryBackendEnv(t, seedPath)
		_, _, err := execute(t, "build", "--case", ebsCase, "--format", "xml")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("missing case flag", func(t *testing.T) {
		memoryBackendEnv(t, seedPath)
		_, _, err := execute(t, "build")
		assert.Error(t, err)
	})

	t.Run("missing seed configuration", func(t *testing.T) {
		memoryBackendEnv(t, "")
		_, _, err := execute(t, "build", "--case", ebsCase)
		assert.ErrorContains(t, err, "CASEBRIDGE_REFDATA_SEED")
	})
}

func TestRefdataValidateCommand(t *testing.T) {
	stdout, _, err := execute(t, "refdata", "validate", "--seed", seedPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "award_types")
	assert.Contains(t, stdout, "ok")
}
