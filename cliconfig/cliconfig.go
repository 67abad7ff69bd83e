// Package cliconfig parses os.Args into an immutable runconfig.RunConfig,
// per spec.md §6's flag list and jagged-array grammar.
//
// Grounded on the teacher's own argv handling in main.go: a flat,
// package-level parse over a hand-rolled flag set, no cobra/viper (no
// example repo in the pack pulls in a CLI framework), validating shapes
// before anything is allocated or any thread spawned - the same
// "terminate before any thread is spawned" propagation policy spec.md §7
// requires.
package cliconfig

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"ccbench/ccerr"
	"ccbench/constants"
	"ccbench/jagged"
	"ccbench/kernel"
	"ccbench/rankmap"
	"ccbench/runconfig"
)

// Config is the fully parsed command line: the immutable RunConfig every
// worker reads, plus the reporting/output flags that do not belong on
// RunConfig because they govern the controller, not a worker.
type Config struct {
	RunConfig runconfig.RunConfig

	Help    bool
	Usage   string
	Verbose bool
	PrintN  int

	JSON      bool
	HistoryDB string
}

const usageHeader = `ccbench - cache-coherence microbenchmark engine

Usage: ccbench [flags]

Flags:
  --help, -h               print this message and the test catalogue
  --repetitions N, -r N     number of rounds (default 1000000)
  --test SPEC, -t SPEC      jagged array of test ids, e.g. [12] or [[12],[13]]
  --cores_array SPEC, -x SPEC  jagged array of physical core ids
  --cores N, -c N           legacy core count, used when -x is absent
  --seed CORE, -b CORE      prime core for each repetition; absent = classic mode
  --stride N, -s N          stride-hiding factor, rounded up to a power of two
  --fence LVL, -e LVL       fence policy 0..9
  --mem-size SIZE, -m SIZE  buffer size, accepts K/M/G suffix
  --flush, -f               flush the contended line before each rep
  --success, -u             force atomic ops to always succeed
  --backoff, -B             enable exponential backoff in retry-until-success
  --backoff-max N, -M N     cap on pause iterations (>=1)
  --backoff-array SPEC, -A SPEC  per-rank caps; length must equal T
  --mlock, -K               best-effort page lock
  --no-numa, -n             disable NUMA-local placement
  --verbose, -v             accepted; no per-sample output is printed
  --print N, -p N           accepted; no per-sample output is printed
  --json, -j                also emit a machine-readable JSON summary
  --history-db PATH         append this run's summary to a SQLite history DB
`

// testCatalogue lists every kernel.TestID by its numeric id, printed by
// --help per spec.md §6.
var testCatalogue = []string{
	"0  STORE_ON_MODIFIED", "1  STORE_ON_EXCLUSIVE", "2  STORE_ON_SHARED",
	"3  STORE_ON_OWNED_MINE", "4  STORE_ON_OWNED", "5  STORE_ON_INVALID",
	"6  LOAD_FROM_MODIFIED", "7  LOAD_FROM_EXCLUSIVE", "8  LOAD_FROM_SHARED",
	"9  LOAD_FROM_OWNED", "10 LOAD_FROM_INVALID", "11 INVALIDATE",
	"12 CAS", "13 FAI", "14 SWAP", "15 TAS",
	"16 CAS_ON_MODIFIED", "17 FAI_ON_MODIFIED", "18 TAS_ON_MODIFIED", "19 SWAP_ON_MODIFIED",
	"20 CAS_ON_SHARED", "21 FAI_ON_SHARED", "22 TAS_ON_SHARED", "23 SWAP_ON_SHARED",
	"24 CAS_CONCURRENT", "25 CAS_UNTIL_SUCCESS",
	"26 LOAD_FROM_L1", "27 LOAD_FROM_MEM_SIZE",
	"28 LFENCE", "29 SFENCE", "30 MFENCE", "31 PAUSE", "32 NOP",
	"33 STORE_ON_MODIFIED_NO_SYNC",
}

// Usage returns the full --help text: the flag summary plus the test
// catalogue.
func Usage() string {
	return usageHeader + "\nTest catalogue:\n  " + strings.Join(testCatalogue, "\n  ") + "\n"
}

func jaggedFlag(fs *flag.FlagSet, long, short string) *string {
	v := new(string)
	fs.StringVar(v, long, "", "")
	fs.StringVar(v, short, "", "")
	return v
}

// Parse builds a Config from argv (excluding the program name). A
// ConfigError wraps any shape mismatch, out-of-range value, or malformed
// jagged array; Parse validates everything before any allocation or
// thread is spawned.
func Parse(argv []string) (Config, error) {
	fs := flag.NewFlagSet("ccbench", flag.ContinueOnError)
	fs.Usage = func() {}

	help := boolFlag(fs, "help", "h", false)
	reps := intFlag(fs, "repetitions", "r", constants.DefaultRepetitions)
	testSpec := jaggedFlag(fs, "test", "t")
	coresSpec := jaggedFlag(fs, "cores_array", "x")
	cores := intFlag(fs, "cores", "c", 1)
	seedCore := intFlag(fs, "seed", "b", -1)
	stride := intFlag(fs, "stride", "s", constants.DefaultStride)
	fenceLevel := intFlag(fs, "fence", "e", 0)
	memSize := new(string)
	fs.StringVar(memSize, "mem-size", "", "")
	fs.StringVar(memSize, "m", "", "")
	flush := boolFlag(fs, "flush", "f", false)
	success := boolFlag(fs, "success", "u", false)
	backoff := boolFlag(fs, "backoff", "B", false)
	backoffMax := intFlag(fs, "backoff-max", "M", constants.DefaultBackoffCap)
	backoffSpec := jaggedFlag(fs, "backoff-array", "A")
	mlock := boolFlag(fs, "mlock", "K", false)
	noNUMA := boolFlag(fs, "no-numa", "n", false)
	verbose := boolFlag(fs, "verbose", "v", false)
	printN := intFlag(fs, "print", "p", 0)
	jsonOut := boolFlag(fs, "json", "j", false)
	historyDB := new(string)
	fs.StringVar(historyDB, "history-db", "", "")

	if err := fs.Parse(argv); err != nil {
		return Config{}, fmt.Errorf("cliconfig: %v: %w", err, ccerr.ErrConfig)
	}

	if *help {
		return Config{Help: true, Usage: Usage()}, nil
	}

	var coresArr, testArr, backoffArr *jagged.Array
	if *coresSpec != "" {
		a, err := jagged.Parse(*coresSpec)
		if err != nil {
			return Config{}, err
		}
		coresArr = &a
	}
	if *testSpec != "" {
		a, err := jagged.Parse(*testSpec)
		if err != nil {
			return Config{}, err
		}
		testArr = &a
	}
	if *backoffSpec != "" {
		a, err := jagged.Parse(*backoffSpec)
		if err != nil {
			return Config{}, err
		}
		backoffArr = &a
	}

	ranks, err := rankmap.Build(coresArr, testArr, backoffArr, *cores, 0, *backoffMax)
	if err != nil {
		return Config{}, err
	}

	fence, err := runconfig.ResolveFencePolicy(*fenceLevel)
	if err != nil {
		return Config{}, err
	}

	lines := constants.DefaultRegionLines
	if *memSize != "" {
		bytes, err := parseMemSize(*memSize)
		if err != nil {
			return Config{}, err
		}
		lines = bytes / constants.LineBytes
		if lines < 1 {
			lines = 1
		}
	}

	strideVal := nextPow2(*stride)
	if err := validatePreconditioned(testArr, *reps, strideVal, lines); err != nil {
		return Config{}, err
	}

	flushPolicy := runconfig.FlushNever
	if *flush {
		flushPolicy = runconfig.FlushBeforeRep
	}

	cfg := runconfig.RunConfig{
		Repetitions:  *reps,
		Stride:       strideVal,
		Fence:        fence,
		Flush:        flushPolicy,
		ForceSuccess: *success,
		Backoff:      *backoff,
		MemSizeBytes: lines * constants.LineBytes,
		MLock:        *mlock,
		NoNUMA:       *noNUMA,
		Verbose:      *verbose,
		SeedCore:     *seedCore,
		Ranks:        ranks,
	}

	return Config{
		RunConfig: cfg,
		Verbose:   *verbose,
		PrintN:    *printN,
		JSON:      *jsonOut,
		HistoryDB: *historyDB,
	}, nil
}

// RegionLines returns how many cacheline.Region lines cfg.RunConfig's
// resolved MemSizeBytes implies - the value numaalloc.Options.Lines
// wants.
func (c Config) RegionLines() int {
	return c.RunConfig.MemSizeBytes / constants.LineBytes
}

func boolFlag(fs *flag.FlagSet, long, short string, def bool) *bool {
	v := new(bool)
	fs.BoolVar(v, long, def, "")
	fs.BoolVar(v, short, def, "")
	return v
}

func intFlag(fs *flag.FlagSet, long, short string, def int) *int {
	v := new(int)
	fs.IntVar(v, long, def, "")
	fs.IntVar(v, short, def, "")
	return v
}

// parseMemSize accepts a plain byte count or a value with a K/M/G
// suffix (base 1024), per spec.md §6.
func parseMemSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("cliconfig: empty --mem-size: %w", ccerr.ErrConfig)
	}
	mult := 1
	suffix := s[len(s)-1]
	switch suffix {
	case 'K', 'k':
		mult = 1024
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'G', 'g':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cliconfig: malformed --mem-size %q: %w", s, ccerr.ErrConfig)
	}
	return n * mult, nil
}

// nextPow2 rounds n up to the next power of two, per spec.md §6's
// "--stride N, -s — stride-hiding factor; rounded up to a power of two".
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// validatePreconditioned asserts spec.md §7's "reps*stride <= N_lines"
// precondition for tests that rely on the buffer being large enough to
// never wrap mid-repetition. Only LOAD_FROM_MEM_SIZE (pointer-chase over
// the whole region) is preconditioned this way; every other kernel reads
// from a single target line and tolerates any buffer size.
func validatePreconditioned(testArr *jagged.Array, reps, stride, lines int) error {
	if testArr == nil {
		return nil
	}
	for _, row := range testArr.Rows {
		for _, id := range row {
			if kernel.TestID(id) == kernel.LoadFromMemSize && reps*stride > lines {
				return fmt.Errorf("cliconfig: reps*stride (%d) exceeds buffer lines (%d) for LOAD_FROM_MEM_SIZE: %w", reps*stride, lines, ccerr.ErrConfig)
			}
		}
	}
	return nil
}
