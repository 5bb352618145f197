package main

/*
rfiscan averages the RFI spectra logged by the spectrum analyzer at the
telescope site over a time range, for one polarisation, azimuth and band.

With -survey it only reports which of the six polarisation/azimuth
configurations have data in the range.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/hb9tf/rfiscan/aggregate"
	"github.com/hb9tf/rfiscan/config"
	"github.com/hb9tf/rfiscan/export"
	"github.com/hb9tf/rfiscan/metrics"
	"github.com/hb9tf/rfiscan/rfi"
	"github.com/hb9tf/rfiscan/scan"
)

// Flags
var (
	configFile   = flag.String("config", "", "YAML file overriding the engine defaults.")
	startTimeRaw = flag.String("startTime", "", "Start of the time range. Format: 2006-01-02T15:04")
	endTimeRaw   = flag.String("endTime", "", "End of the time range. Format: 2006-01-02T15:04")
	pol          = flag.String("pol", "H", "Polarisation (one of: H, V).")
	azimuth      = flag.Int("az", 0, "Azimuth in degrees (one of: 0, 120, 240).")
	band         = flag.Int("band", 0, "Frequency band (0: 1 MHz - 1 GHz, 1: 325 - 329 MHz, 2: 327.275 - 327.525 MHz).")
	dataDir      = flag.String("dataDir", ".", "Directory holding the data files.")
	survey       = flag.Bool("survey", false, "Only report file coverage for all polarisations and azimuths of -band.")
	output       = flag.String("output", "csv", "Export mechanism to use (one of: csv, sqlite, mysql)")
	csvFile      = flag.String("csvFile", "", "CSV output file. Defaults to a name derived from the parameters, '-' for stdout.")
	metricsFile  = flag.String("metricsFile", "", "Write run metrics to this node exporter textfile.")

	// SQLite
	sqliteFile = flag.String("sqliteFile", "/tmp/rfiscan", "File path of the sqlite DB file to use.")

	// MySQL
	mysqlServer       = flag.String("mysqlServer", "127.0.0.1:3306", "MySQL TCP server endpoint to connect to (IP/DNS and port).")
	mysqlUser         = flag.String("mysqlUser", "", "MySQL DB user.")
	mysqlPasswordFile = flag.String("mysqlPasswordFile", "", "Path to the file containing the password for the MySQL user.")
	mysqlDBName       = flag.String("mysqlDBName", "rfiscan", "Name of the DB to use.")
)

const (
	timeFmt   = "2006-01-02T15:04"
	reportFmt = "15:04, 02 January 2006"
	nameFmt   = "20060102_1504"
)

func writeMetrics(rec *metrics.Recorder) {
	if *metricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(*metricsFile); err != nil {
		glog.Warningf("unable to write metrics to %q: %s", *metricsFile, err)
	}
}

// exit reports err and terminates with its exit status. Deferred calls do
// not run, so the metrics are written here.
func exit(rec *metrics.Recorder, err error) {
	writeMetrics(rec)
	glog.Errorf("%s", err)
	glog.Flush()
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(rfi.ExitStatus(err))
}

func printReport(res *scan.Result, p rfi.Params) {
	cov := res.Coverage()
	fmt.Println()
	fmt.Printf("First file:\t%s\n", res.First().Path)
	fmt.Printf("Last file:\t%s\n", res.Last().Path)
	fmt.Println()
	fmt.Println("Actual time range (corrected w.r.t available files):")
	fmt.Printf("  %s  -->  %s\n", res.Start.Format(reportFmt), res.End.Format(reportFmt))
	fmt.Printf("  Length of time interval: %.2f day(s)\n", res.End.Sub(res.Start).Hours()/24)
	fmt.Printf("  Polarisation: %s\n", p.Polarisation)
	fmt.Printf("  Azimuth: %d deg\n", p.Azimuth)
	fmt.Printf("  Frequency band: %s\n", p.Band)
	fmt.Println()
	fmt.Printf("Total number of files in time range: %d\n", cov.Present)
	if cov.Present < cov.Expected {
		fmt.Printf("Number of files expected in time interval: %d\n", cov.Expected)
		fmt.Printf("Percentage completeness: %6.2f%%\n", cov.Completeness())
	}
}

func printRejected(res *aggregate.Result, expected int) {
	if len(res.Rejected) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("-> The following file(s) had invalid values of signal power:")
	fmt.Println("-> (possibly indicating amplifier malfunction)")
	for _, r := range res.Rejected {
		fmt.Println(r)
	}
	fmt.Printf("\n-> Total number of useful files therefore: %d\n", res.Used)
	if expected > 0 && res.Used < expected {
		fmt.Printf("-> Percentage completeness: %6.2f%%\n", float64(res.Used)/float64(expected)*100)
	}
}

func runSurvey(cfg *config.Config, rec *metrics.Recorder, start, end time.Time) {
	entries := cfg.Scanner(rec).Survey(start, end, rfi.Band(*band), *dataDir)
	fmt.Printf("Frequency band: %s\n\n", rfi.Band(*band))
	fmt.Println("Pol\tAz\tTime interval\t\t\t\t\tDays\tFiles\tComplete")
	for _, e := range entries {
		if e.Err != nil {
			fmt.Printf("%s\t%d\t%s\n", e.Polarisation, e.Azimuth, e.Err)
			continue
		}
		cov := e.Result.Coverage()
		fmt.Printf("%s\t%d\t%s --> %s\t%.2f\t%d\t%6.2f%%\n",
			e.Polarisation, e.Azimuth,
			e.Result.Start.Format(reportFmt), e.Result.End.Format(reportFmt),
			e.Result.End.Sub(e.Result.Start).Hours()/24, cov.Present, cov.Completeness())
	}
}

func newExporter(p rfi.Params) (export.Exporter, func(), error) {
	switch strings.ToLower(*output) {
	case "csv":
		if *csvFile == "-" {
			return &export.CSV{W: os.Stdout, Short: true}, func() {}, nil
		}
		name := *csvFile
		if name == "" {
			name = fmt.Sprintf("%s-%s_%s%d_%d.csv", p.Start.Format(nameFmt), p.End.Format(nameFmt), p.Polarisation, p.Azimuth, p.Band)
		}
		f, err := os.Create(name)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot write file %s for output results: %s", name, err)
		}
		fmt.Printf("Writing output results to %s\n", name)
		return &export.CSV{W: f, Short: true}, func() { f.Close() }, nil
	case "sqlite":
		db, err := export.OpenSQLite(*sqliteFile)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open sqlite DB %q: %s", *sqliteFile, err)
		}
		return &export.SQLite{DB: db}, func() { db.Close() }, nil
	case "mysql":
		pass, err := os.ReadFile(*mysqlPasswordFile)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read MySQL password file %q: %s", *mysqlPasswordFile, err)
		}
		db, err := export.OpenMySQL(*mysqlServer, *mysqlUser, string(pass), *mysqlDBName)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open MySQL DB %q: %s", *mysqlServer, err)
		}
		return &export.MySQL{DB: db}, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("%q is not a supported export method, pick one of: csv, sqlite, mysql", *output)
}

func main() {
	ctx := context.Background()
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	// Parse flags globally.
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Exitf("unable to load config %q: %s", *configFile, err)
	}
	loc := cfg.TimeLocation()
	startTime, err := time.ParseInLocation(timeFmt, *startTimeRaw, loc)
	if err != nil {
		glog.Exitf("unable to parse startTime (value: %q, format: %q): %s", *startTimeRaw, timeFmt, err)
	}
	endTime, err := time.ParseInLocation(timeFmt, *endTimeRaw, loc)
	if err != nil {
		glog.Exitf("unable to parse endTime (value: %q, format: %q): %s", *endTimeRaw, timeFmt, err)
	}

	rec := metrics.New()
	defer writeMetrics(rec)

	params := rfi.Params{
		Start:        startTime,
		End:          endTime,
		Polarisation: rfi.Polarisation(strings.ToUpper(*pol)),
		Azimuth:      rfi.Azimuth(*azimuth),
		Band:         rfi.Band(*band),
		DataDir:      *dataDir,
	}
	if err := params.Validate(); err != nil {
		glog.Exitf("%s", err)
	}

	if *survey {
		runSurvey(cfg, rec, startTime, endTime)
		return
	}

	g, err := cfg.GainTable(params.Band, "")
	if err != nil {
		glog.Exitf("amplifier gain data for band %d: %s", params.Band, err)
	}

	found, err := cfg.Scanner(rec).Scan(params)
	if err != nil {
		exit(rec, err)
	}
	printReport(found, params)
	cov := found.Coverage()
	rec.SetCompleteness(string(params.Polarisation), int(params.Azimuth), int(params.Band), cov.Completeness()/100)

	res, err := cfg.Aggregator(rec).Aggregate(found.Slots, g, aggregate.Mean)
	if err != nil {
		exit(rec, err)
	}
	printRejected(res, cov.Expected)

	exporter, closer, err := newExporter(params)
	if err != nil {
		glog.Exitf("%s", err)
	}
	defer closer()
	rows := export.MeanRows(uuid.NewString(), params, found.Start, found.End, res.Frequency, res.Mean)
	if err := export.Send(ctx, exporter, rows); err != nil {
		exit(rec, err)
	}
}
