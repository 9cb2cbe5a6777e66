package runner

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/browser"
	"github.com/jb-miles/castscout/internal/config"
	"github.com/jb-miles/castscout/internal/domain"
	"github.com/jb-miles/castscout/internal/ledger"
)

// tally records which worker claimed which performer across all stub drivers.
type tally struct {
	mu     sync.Mutex
	claims map[string][]int
}

func newTally() *tally { return &tally{claims: make(map[string][]int)} }

func (c *tally) record(worker int, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claims[name] = append(c.claims[name], worker)
}

// stubDriver answers every search with a single exact-match profile link for
// the queried name.
type stubDriver struct {
	worker     int
	tally      *tally
	fatalNames map[string]bool

	mu         sync.Mutex
	lastQuery  string
	relaunches int
}

func (d *stubDriver) Navigate(_ context.Context, rawURL string, _ time.Duration) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	name := u.Query().Get("searchstring")
	if name == "" {
		// profile page navigation
		return nil
	}
	d.mu.Lock()
	d.lastQuery = name
	d.mu.Unlock()
	if d.fatalNames[name] {
		return errors.New("chrome error: target crashed")
	}
	if d.tally != nil {
		d.tally.record(d.worker, name)
	}
	return nil
}

func (d *stubDriver) HTML(context.Context) (string, error) {
	d.mu.Lock()
	name := d.lastQuery
	d.mu.Unlock()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return fmt.Sprintf(
		`<html><body><a href="/person.rme/perfid=%s/gender=m/%s.htm">%s</a></body></html>`,
		strings.ReplaceAll(slug, "-", ""), slug, name,
	), nil
}

func (d *stubDriver) Reload(context.Context, time.Duration) error { return nil }
func (d *stubDriver) Title(context.Context) (string, error)       { return "Search Results", nil }
func (d *stubDriver) BodyText(context.Context) (string, error)    { return "", nil }
func (d *stubDriver) CanonicalURL(context.Context) (string, error) {
	return "", nil
}
func (d *stubDriver) Location(context.Context) (string, error) { return "", nil }
func (d *stubDriver) Images(context.Context) ([]domain.PhotoCandidate, error) {
	return nil, nil
}
func (d *stubDriver) Close() error { return nil }

func (d *stubDriver) Relaunch(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.relaunches++
	return nil
}

var _ browser.Driver = (*stubDriver)(nil)

// blockingDriver parks in Navigate until the run context is cancelled.
type blockingDriver struct {
	stubDriver
	started chan struct{}
	once    sync.Once
}

func (d *blockingDriver) Navigate(ctx context.Context, _ string, _ time.Duration) error {
	d.once.Do(func() { close(d.started) })
	<-ctx.Done()
	return ctx.Err()
}

func testConfig(t *testing.T, concurrency int) *config.Config {
	t.Helper()
	return &config.Config{
		Lookup: config.LookupConfig{
			BaseURL:     "https://example.test",
			OutputPath:  filepath.Join(t.TempDir(), "results.csv"),
			Concurrency: concurrency,
			NavTimeout:  time.Second,
		},
		Photo: config.PhotoConfig{Kind: config.PhotoKindBoth},
	}
}

func newTestRunner(t *testing.T, cfg *config.Config, factory DriverFactory) (*Runner, *ledger.Ledger) {
	t.Helper()
	led, err := ledger.Open(cfg.Lookup.OutputPath)
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })

	r, err := New(cfg, zap.NewNop(), led, nil, factory)
	require.NoError(t, err)
	r.baseDelay = 0
	r.jitter = 0
	return r, led
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records[1:] // drop header
}

func TestRunProcessesEveryItemExactlyOnce(t *testing.T) {
	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("Performer %c", 'A'+i)
	}

	claims := newTally()
	cfg := testConfig(t, 3)
	r, _ := newTestRunner(t, cfg, func(_ context.Context, id int) (browser.Driver, error) {
		return &stubDriver{worker: id, tally: claims}, nil
	})

	require.NoError(t, r.Run(context.Background(), names))

	rows := readRows(t, cfg.Lookup.OutputPath)
	assert.Len(t, rows, len(names))

	for _, name := range names {
		assert.Len(t, claims.claims[name], 1, "%q must be claimed by exactly one worker", name)
	}
	for _, row := range rows {
		assert.Equal(t, string(domain.StatusFound), row[1])
	}
}

func TestRunSingleWorker(t *testing.T) {
	names := []string{"Jane Doe", "John Roe", "Zak Spears"}
	cfg := testConfig(t, 1)
	r, _ := newTestRunner(t, cfg, func(_ context.Context, id int) (browser.Driver, error) {
		return &stubDriver{worker: id}, nil
	})

	require.NoError(t, r.Run(context.Background(), names))
	rows := readRows(t, cfg.Lookup.OutputPath)
	require.Len(t, rows, 3)
	// single worker preserves claim order in the ledger
	assert.Equal(t, "Jane Doe", rows[0][0])
	assert.Equal(t, "John Roe", rows[1][0])
	assert.Equal(t, "Zak Spears", rows[2][0])
}

func TestRunRecordsErrorAndRelaunchesOnSessionFatal(t *testing.T) {
	names := []string{"Crashy Name", "Jane Doe"}
	var drv *stubDriver
	cfg := testConfig(t, 1)
	r, _ := newTestRunner(t, cfg, func(_ context.Context, id int) (browser.Driver, error) {
		drv = &stubDriver{worker: id, fatalNames: map[string]bool{"Crashy Name": true}}
		return drv, nil
	})

	require.NoError(t, r.Run(context.Background(), names))

	rows := readRows(t, cfg.Lookup.OutputPath)
	require.Len(t, rows, 2)

	byName := map[string][]string{}
	for _, row := range rows {
		byName[row[0]] = row
	}
	require.Contains(t, byName, "Crashy Name")
	assert.Equal(t, string(domain.StatusError), byName["Crashy Name"][1])
	assert.Empty(t, byName["Crashy Name"][2], "error rows carry empty match fields")
	assert.Equal(t, string(domain.StatusFound), byName["Jane Doe"][1])
	assert.Equal(t, 1, drv.relaunches, "fatal error triggers one relaunch")
}

func TestRunResumeSkipsRecordedNames(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Lookup.Resume = true

	// pre-record one performer, including its header
	led, err := ledger.Open(cfg.Lookup.OutputPath)
	require.NoError(t, err)
	require.NoError(t, led.Append(domain.LookupResult{
		Performer:  "Jane Doe",
		Status:     domain.StatusFound,
		SearchedAt: time.Now(),
	}))
	require.NoError(t, led.Close())

	claims := newTally()
	r, _ := newTestRunner(t, cfg, func(_ context.Context, id int) (browser.Driver, error) {
		return &stubDriver{worker: id, tally: claims}, nil
	})

	require.NoError(t, r.Run(context.Background(), []string{"Jane Doe", "New Name"}))

	rows := readRows(t, cfg.Lookup.OutputPath)
	assert.Len(t, rows, 2, "exactly one new row appended")
	assert.Empty(t, claims.claims["Jane Doe"], "resumed name never dispatched")
	assert.Len(t, claims.claims["New Name"], 1)
}

func TestRunCancelledMidItemLeavesItemUnrecorded(t *testing.T) {
	drv := &blockingDriver{started: make(chan struct{})}
	cfg := testConfig(t, 1)
	r, _ := newTestRunner(t, cfg, func(context.Context, int) (browser.Driver, error) {
		return drv, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-drv.started
		cancel()
	}()

	require.NoError(t, r.Run(ctx, []string{"Jane Doe"}))

	// the interrupted item must not become a durable error row: a resumed
	// run has to retry it
	rows := readRows(t, cfg.Lookup.OutputPath)
	assert.Empty(t, rows, "cancelled in-flight item left unrecorded")
	assert.Zero(t, drv.relaunches, "no relaunch against a cancelled run")
}

func TestRunFailsWhenSessionLaunchFails(t *testing.T) {
	cfg := testConfig(t, 2)
	r, _ := newTestRunner(t, cfg, func(_ context.Context, _ int) (browser.Driver, error) {
		return nil, errors.New("chrome failed to start")
	})
	err := r.Run(context.Background(), []string{"Jane Doe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launching session")
}

func TestReadNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\n\n  John Roe  \n\nJane Doe\n"), 0644))

	names, err := ReadNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe", "John Roe", "Jane Doe"}, names,
		"blank lines dropped, order and duplicates preserved")
}
