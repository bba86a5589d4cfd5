//go:build basic || database

// Package integration contains integration tests for epigrowth.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database backends: go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a shared epigrowth binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the epigrowth binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "epigrowth-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "epigrowth")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build epigrowth: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// fixture holds the paths of a generated data set.
type fixture struct {
	Dir        string
	Cases      string
	Population string
	Shapes     string
}

// writeFixture writes a small cases file and population file.
// King doubles every day, Cook doubles every two days and Travis stays flat.
// Honolulu grows but sits in an excluded state.
func writeFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	var cases strings.Builder
	cases.WriteString("date,county,state,fips,cases,deaths\n")
	counties := []struct {
		county, state, fips string
		daily               []int
	}{
		{"King", "Washington", "53033", []int{1, 1, 2, 4, 8}},
		{"Cook", "Illinois", "17031", []int{4, 0, 4, 0, 8}},
		{"Travis", "Texas", "48453", []int{5, 0, 0, 0, 0}},
		{"Honolulu", "Hawaii", "15003", []int{1, 1, 2, 4, 8}},
	}
	for _, c := range counties {
		for i, n := range c.daily {
			fmt.Fprintf(&cases, "2020-03-%02d,%s,%s,%s,%d,0\n", 8+i, c.county, c.state, c.fips, n)
		}
	}
	cases.WriteString("2020-03-09,Unknown,New York,,3,0\n")

	population := `SUMLEV,STATE,COUNTY,STNAME,CTYNAME,POPESTIMATE2019
050,53,033,Washington,King County,2252782
050,17,031,Illinois,Cook County,5150233
050,48,453,Texas,Travis County,1273954
050,15,003,Hawaii,Honolulu County,974563
`

	f := fixture{
		Dir:        dir,
		Cases:      filepath.Join(dir, "us-counties.csv"),
		Population: filepath.Join(dir, "co-est2019-alldata.csv"),
	}
	require.NoError(t, os.WriteFile(f.Cases, []byte(cases.String()), 0o644))
	require.NoError(t, os.WriteFile(f.Population, []byte(population), 0o644))
	f.Shapes = writeShapes(t, dir)
	return f
}

// writeShapes writes one square county per fixture FIPS, a degree apart.
func writeShapes(t *testing.T, dir string) string {
	t.Helper()
	base := filepath.Join(dir, "counties")
	w, err := shp.Create(base+".shp", shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("GEOID", 5),
		shp.NumberField("ALAND", 14),
		shp.NumberField("AWATER", 14),
	}))
	for i, geoid := range []string{"53033", "17031", "48453", "15003"} {
		x := float64(i * 2)
		ring := []shp.Point{{X: x, Y: 0}, {X: x, Y: 1}, {X: x + 1, Y: 1}, {X: x + 1, Y: 0}, {X: x, Y: 0}}
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
		n := int(w.Write(&poly))
		require.NoError(t, w.WriteAttribute(n, 0, geoid))
		require.NoError(t, w.WriteAttribute(n, 1, (i+1)*1_000_000_000))
		require.NoError(t, w.WriteAttribute(n, 2, 0))
	}
	w.Close()

	// Some releases of the writer name the table without the dot.
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}
	return base + ".shp"
}

// inputArgs returns the input file flags for f.
func (f fixture) inputArgs() []string {
	return []string{"--cases-file", f.Cases, "--population-file", f.Population, "--shapes-file", f.Shapes}
}

// runCommand runs the binary in dir with env appended to the current environment.
func runCommand(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), err
}
