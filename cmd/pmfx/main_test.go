package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pmfarchive/internal/combine"
	"github.com/kingrea/pmfarchive/internal/config"
	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/pmf"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

func runPMFX(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(append([]string{"--project", dir}, args...), &stdout, &stderr)
	return stdout.String(), err
}

// initProject runs init in a fresh project directory.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runPMFX(t, dir, "init")
	require.NoError(t, err)
	return dir
}

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	data := numl.NewDocument()
	data.ResultComponents = []numl.ResultComponent{{
		ID: "growth",
		Description: []numl.AtomicDescription{
			{Name: "Time", ValueType: "double"},
			{Name: "Concentration", ValueType: "double"},
		},
		Tuples: []numl.Tuple{{0, 2.1}, {24, 3.4}},
	}}
	agg := &pmf.OneStepSecondaryModel{
		Name:      "s.sbml",
		Doc:       sbml.NewDocument("s"),
		DataNames: []string{"d.numl"},
		Data:      []*numl.Document{data},
	}
	path := filepath.Join(dir, "model.pmfx")
	require.NoError(t, pmf.NewMapper().Write(path, pmf.TypeOneStepSecondaryModel, []pmf.Aggregate{agg}))
	return path
}

func TestInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := runPMFX(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")
	_, err = os.Stat(filepath.Join(dir, config.Dir, "config.yaml"))
	assert.NoError(t, err)
}

func TestInspectListsEntries(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	out, err := runPMFX(t, dir, "inspect", "model")
	require.NoError(t, err)
	assert.Contains(t, out, "type: ONE_STEP_SECONDARY_MODEL")
	assert.Contains(t, out, "s.sbml")
	assert.Contains(t, out, "d.numl")
	assert.Contains(t, out, "master")
	assert.Contains(t, out, pmf.ReadmeName)
}

func TestReadRecordsHistory(t *testing.T) {
	dir := initProject(t)
	writeSample(t, dir)

	out, err := runPMFX(t, dir, "read", "model.pmfx")
	require.NoError(t, err)
	assert.Contains(t, out, "ONE_STEP_SECONDARY_MODEL  1 aggregates")
	assert.Contains(t, out, "  s.sbml")

	out, err = runPMFX(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "INFO  read")
	assert.Contains(t, out, "aggregates=1")
}

func TestReadRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	_, err := runPMFX(t, dir, "read", "model.pmfx", "--type", "QUATERNARY")
	assert.ErrorIs(t, err, pmf.ErrUnknownModelType)
}

func TestConvertWritesTargetProfile(t *testing.T) {
	dir := initProject(t)
	writeSample(t, dir)

	out, err := runPMFX(t, dir, "convert", "model.pmfx", "copy.pmf")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 ONE_STEP_SECONDARY_MODEL aggregates")

	got, err := pmf.ReadTyped[*pmf.OneStepSecondaryModel](pmf.NewMapper(), filepath.Join(dir, "copy.pmf"), pmf.TypeOneStepSecondaryModel)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"d.numl"}, got[0].DataNames)
	require.Len(t, got[0].Data, 1)
	assert.NotNil(t, got[0].Data[0])

	out, err = runPMFX(t, dir, "history", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "convert")
	assert.Contains(t, out, "(1 of 3 entries)")
}

func TestConvertRefusesSameFile(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	_, err := runPMFX(t, dir, "convert", "model.pmfx", "model.pmfx")
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "model.pmfx"))
	assert.NoError(t, statErr)
}

func TestHistoryEmpty(t *testing.T) {
	out, err := runPMFX(t, t.TempDir(), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no history yet")

	out, err = runPMFX(t, initProject(t), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "INFO  init")
}

func TestInitSavesFlags(t *testing.T) {
	dir := t.TempDir()
	out, err := runPMFX(t, dir, "init", "--profile", "PMF", "--no-readme")
	require.NoError(t, err)
	assert.Contains(t, out, "profile pmf")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "pmf", cfg.Project.Profile)
	assert.False(t, cfg.Project.Readme)
}

func TestInitRejectsUnknownProfile(t *testing.T) {
	_, err := runPMFX(t, t.TempDir(), "init", "--profile", "zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")
}

func TestReadOutsideProjectWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	_, err := runPMFX(t, dir, "read", "model.pmfx")
	require.NoError(t, err)
	_, err = runPMFX(t, dir, "inspect", "model.pmfx")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, config.Dir))
	assert.True(t, os.IsNotExist(statErr), "state dir should not exist, stat err = %v", statErr)
}

func TestFailedCommandClosesLogFile(t *testing.T) {
	dir := initProject(t)
	var stdout, stderr bytes.Buffer
	s := newSession(&stderr)

	err := execute(s, []string{"--project", dir, "read", "missing.pmfx"}, &stdout)
	require.ErrorIs(t, err, pmf.ErrOpen)
	assert.ErrorIs(t, s.log.Close(), os.ErrClosed)
}

func TestShowPrintsEntry(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	out, err := runPMFX(t, dir, "show", "model.pmfx", pmf.ReadmeName)
	require.NoError(t, err)
	assert.Contains(t, out, "PMF-ML")

	_, err = runPMFX(t, dir, "show", "model.pmfx", "nope.sbml")
	assert.ErrorIs(t, err, combine.ErrEntryNotFound)
}

func TestReadAsTypeKeepsDescriptor(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	var stderr bytes.Buffer
	s := newSession(&stderr)
	require.NoError(t, execute(s, []string{"--project", dir, "read", "model.pmfx"}, &bytes.Buffer{}))
	res, err := s.read(filepath.Join(dir, "model.pmfx"), "one_step_secondary_model")
	require.NoError(t, err)
	require.NotNil(t, res.Descriptor)
	assert.True(t, res.Descriptor.Has("s.sbml"))
}

func TestUnknownTypeListsChoices(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	_, err := runPMFX(t, dir, "read", "model.pmfx", "--type", "QUATERNARY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MANUAL_TERTIARY_MODEL")
}
