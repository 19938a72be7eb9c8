package cmd

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/dcol97/souffle/pkg/ast"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flagCmd builds a bare *cobra.Command carrying the same persistent flags
// rootCmd registers in its own init(), so configFromFlags/GetFlag/GetString/
// GetUint can be exercised without going through Execute().
func flagCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().String("fact-dir", "", "")
	c.Flags().String("output-dir", "", "")
	c.Flags().String("engine", "", "")
	c.Flags().Bool("provenance", false, "")
	c.Flags().Bool("profile", false, "")
	c.Flags().String("debug-report", "", "")
	c.Flags().UintP("opt", "O", 1, "")
	c.Flags().Uint("max-transform-iterations", 16, "")
	c.Flags().BoolP("verbose", "v", false, "")

	return c
}

func TestConfigFromFlagsUsesDefaults(t *testing.T) {
	cfg := configFromFlags(flagCmd())

	assert.Equal(t, "", cfg.FactDir)
	assert.Equal(t, "", cfg.Engine)
	assert.False(t, cfg.Provenance)
	assert.False(t, cfg.Profile)
	assert.Equal(t, uint(1), cfg.OptLevel)
	assert.Equal(t, 16, cfg.MaxTransformIterations)
}

func TestConfigFromFlagsReadsOverrides(t *testing.T) {
	c := flagCmd()
	require.NoError(t, c.Flags().Set("fact-dir", "/tmp/facts"))
	require.NoError(t, c.Flags().Set("engine", "soufflescript"))
	require.NoError(t, c.Flags().Set("provenance", "true"))
	require.NoError(t, c.Flags().Set("opt", "0"))
	require.NoError(t, c.Flags().Set("max-transform-iterations", "4"))

	cfg := configFromFlags(c)

	assert.Equal(t, "/tmp/facts", cfg.FactDir)
	assert.Equal(t, "soufflescript", cfg.Engine)
	assert.True(t, cfg.Provenance)
	assert.Equal(t, uint(0), cfg.OptLevel)
	assert.Equal(t, 4, cfg.MaxTransformIterations)
}

func TestGetFlagGetStringGetUint(t *testing.T) {
	c := flagCmd()
	require.NoError(t, c.Flags().Set("profile", "true"))
	require.NoError(t, c.Flags().Set("engine", "rpc"))
	require.NoError(t, c.Flags().Set("opt", "2"))

	assert.True(t, GetFlag(c, "profile"))
	assert.Equal(t, "rpc", GetString(c, "engine"))
	assert.Equal(t, uint(2), GetUint(c, "opt"))
}

func TestReadProgramFileRoundTrips(t *testing.T) {
	want := &ast.Program{
		Relations: map[string]*ast.Relation{
			"P": {Name: "P", Arity: 1, Output: true},
		},
		Clauses: []*ast.Clause{
			{Head: ast.Literal{Relation: "P", Args: []ast.Expr{&ast.IntConst{Value: 1}}}},
		},
	}

	path := filepath.Join(t.TempDir(), "program.gob")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(f).Encode(want))
	require.NoError(t, f.Close())

	got := readProgramFile(path)

	require.Len(t, got.Clauses, 1)
	assert.Equal(t, "P", got.Clauses[0].Head.Relation)
	require.Contains(t, got.Relations, "P")
	assert.Equal(t, uint(1), got.Relations["P"].Arity)
}
