// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/OrderRecords/cmd/orderrecords/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{config.EnvConfigPath, config.EnvPort, config.EnvLogLevel, config.EnvExporter, config.EnvOTLPEndpoint} {
		t.Setenv(k, "")
	}
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "tom-12", "NEW-55-ABC")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "tom-12\tPPM", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "NEW-55-ABC\t"))
}

func TestClassify_RequiresArgs(t *testing.T) {
	_, err := run(t, "classify")
	assert.Error(t, err)
}

func TestSchedule(t *testing.T) {
	out, err := run(t, "schedule", "--date", "2026-01-10", "--from", "384", "--through", "386")

	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Sprint-384\t2025-12-24\t2026-01-06",
		"Sprint-385\t2026-01-07\t2026-01-20\t*",
		"Sprint-386\t2026-01-21\t2026-02-03",
		"date=2026-01-10",
		"sprint=Sprint-385",
	}, "\n")+"\n", out)
}

func TestSchedule_DefaultRange(t *testing.T) {
	out, err := run(t, "schedule", "--date", "2026-01-10")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Sprint-340 through Sprint-400, then date and sprint.
	require.Len(t, lines, 61+2)
	assert.True(t, strings.HasPrefix(lines[0], "Sprint-340\t"))
	assert.True(t, strings.HasPrefix(lines[60], "Sprint-400\t"))
}

func TestSchedule_Errors(t *testing.T) {
	_, err := run(t, "schedule", "--date", "2026-02-30")
	assert.Error(t, err)

	_, err = run(t, "schedule", "--from", "390", "--through", "380")
	assert.ErrorContains(t, err, "before")
}

func TestStore(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "store", "--dir", dir, "--order-id", "NEW-55-ABC", "--env", "prod", "--date", "2026-01-10")

	require.NoError(t, err)
	assert.Contains(t, out, "OK: Order ID saved successfully\n")
	assert.Contains(t, out, "file="+filepath.Join(dir, "order-records.xlsx")+"\n")
	assert.Contains(t, out, "order_id=NEW-55-ABC\n")
	assert.Contains(t, out, "stored_at=2026-01-10\n")
	assert.Contains(t, out, "entries=1\n")
	assert.FileExists(t, filepath.Join(dir, "order-records.xlsx"))

	out, err = run(t, "store", "--dir", dir, "--order-id", "TOM-7", "--env", "qa", "--date", "2026-01-11")
	require.NoError(t, err)
	assert.Contains(t, out, "entries=2\n")
}

func TestStore_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "store", "--dir", dir)
	assert.Error(t, err, "order-id is required")

	_, err = run(t, "store", "--dir", dir, "--order-id", "A")
	assert.ErrorContains(t, err, `"env"`)

	_, err = run(t, "store", "--dir", dir, "--order-id", "A", "--env", "  ")
	assert.ErrorContains(t, err, "env is required")

	_, err = run(t, "store", "--dir", dir, "--order-id", "A", "--env", "qa", "--date", "2026-13-01")
	assert.ErrorContains(t, err, "invalid date")
	assert.NoFileExists(t, filepath.Join(dir, "order-records.xlsx"))
}

func TestStore_PaddedDate(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "store", "--dir", dir, "--order-id", "A", "--env", "qa", "--date", " 2026-01-10 ")

	require.NoError(t, err)
	assert.Contains(t, out, "stored_at=2026-01-10\n")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderrecords.yaml")

	out, err := run(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: wrote "+path)

	_, err = run(t, "init-config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "init-config", "--force", path)
	assert.NoError(t, err)

	out, err = run(t, "--config", path, "classify", "tom-12")
	require.NoError(t, err)
	assert.Equal(t, "tom-12\tPPM\n", out)
}

func TestRoot_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0644))

	_, err := run(t, "--config", path, "classify", "x")
	assert.ErrorContains(t, err, "invalid config")

	_, err = run(t, "--log-level", "loud", "classify", "x")
	assert.Error(t, err)
}
