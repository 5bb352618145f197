package main

/*
This application renders the spectrogram of one day of RFI data for one
polarisation, azimuth and band: frequency on the Y axis, time of day on the
X axis. Slots without a file and samples recorded with a malfunctioning
amplifier are drawn at the noise floor.
*/

import (
	"context"
	"flag"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/hb9tf/rfiscan/aggregate"
	"github.com/hb9tf/rfiscan/config"
	"github.com/hb9tf/rfiscan/export"
	"github.com/hb9tf/rfiscan/extraction"
	"github.com/hb9tf/rfiscan/metrics"
	"github.com/hb9tf/rfiscan/rfi"
	"github.com/hb9tf/rfiscan/scan"
)

// Flags
var (
	configFile  = flag.String("config", "", "YAML file overriding the engine defaults.")
	dateRaw     = flag.String("date", "", "Day to render. Format: 20060102")
	pol         = flag.String("pol", "H", "Polarisation (one of: H, V).")
	azimuth     = flag.Int("az", 0, "Azimuth in degrees (one of: 0, 120, 240).")
	band        = flag.Int("band", 0, "Frequency band (one of: 0, 1, 2).")
	dataDir     = flag.String("dataDir", ".", "Directory holding the data files.")
	imgPath     = flag.String("imgPath", "/tmp/rfi.png", "Path where the rendered image should be written to (.png or .jpg).")
	columnWidth = flag.Int("columnWidth", 4, "Width of one 15 minute slot in pixels.")
	addGrid     = flag.Bool("grid", true, "Draw a labelled grid around the spectrogram.")
	csvPath     = flag.String("csvPath", "", "Also write the spectrogram matrix as CSV to this file.")
	metricsFile = flag.String("metricsFile", "", "Write run metrics to this node exporter textfile.")
)

const dateFmt = "20060102"

func main() {
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
	day, err := time.ParseInLocation(dateFmt, *dateRaw, cfg.TimeLocation())
	if err != nil {
		glog.Exitf("unable to parse date (value: %q, format: %q): %s", *dateRaw, dateFmt, err)
	}
	params := rfi.Params{
		Start:        day,
		End:          day.Add(24*time.Hour - time.Minute),
		Polarisation: rfi.Polarisation(strings.ToUpper(*pol)),
		Azimuth:      rfi.Azimuth(*azimuth),
		Band:         rfi.Band(*band),
		DataDir:      *dataDir,
	}
	if err := params.Validate(); err != nil {
		glog.Exitf("%s", err)
	}
	g, err := cfg.GainTable(params.Band, "")
	if err != nil {
		glog.Exitf("amplifier gain data for band %d: %s", params.Band, err)
	}

	rec := metrics.New()
	found, err := cfg.Scanner(rec).ScanStrict(params)
	if err != nil {
		exit(rec, err)
	}
	cov := found.Coverage()
	fmt.Printf("First file:\t%s\n", found.First().Path)
	fmt.Printf("Last file:\t%s\n", found.Last().Path)
	fmt.Printf("Files: %d of %d slots (%6.2f%%)\n", cov.Present, len(found.Slots), float64(cov.Present)/float64(len(found.Slots))*100)
	rec.SetCompleteness(string(params.Polarisation), int(params.Azimuth), int(params.Band), float64(cov.Present)/float64(len(found.Slots)))

	res, err := cfg.Aggregator(rec).Aggregate(found.Slots, g, aggregate.Matrix)
	if err != nil {
		exit(rec, err)
	}
	if len(res.Rejected) > 0 {
		fmt.Println("These files had invalid values of signal power (possibly indicating amplifier malfunction):")
		for _, r := range res.Rejected {
			fmt.Println(r)
		}
	}

	times := make([]time.Time, len(found.Slots))
	for i, s := range found.Slots {
		times[i] = s.Time
	}
	result, err := extraction.Render(&extraction.RenderRequest{
		Power:     res.Matrix,
		Frequency: res.Frequency,
		Times:     times,
		Image: &extraction.ImageOptions{
			ColumnWidth: *columnWidth,
			AddGrid:     *addGrid,
		},
	})
	if err != nil {
		glog.Exitf("unable to render spectrogram: %s", err)
	}
	fmt.Printf("Rendering image (%d x %d), %.2f to %.2f dBm\n", result.Meta.ImageWidth, result.Meta.ImageHeight, result.Meta.MinDBm, result.Meta.MaxDBm)

	fmt.Printf("Writing image to %q\n", *imgPath)
	f, err := os.Create(*imgPath)
	if err != nil {
		glog.Exitf("unable to create %q: %s", *imgPath, err)
	}
	defer f.Close()
	switch {
	case strings.HasSuffix(*imgPath, ".png"):
		err = png.Encode(f, result.Image)
	case strings.HasSuffix(*imgPath, ".jpg"):
		err = jpeg.Encode(f, result.Image, &jpeg.Options{Quality: jpeg.DefaultQuality})
	default:
		err = fmt.Errorf("unknown image format, use .png or .jpg")
	}
	if err != nil {
		glog.Exitf("unable to write image %q: %s", *imgPath, err)
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, params, found, res); err != nil {
			glog.Exitf("%s", err)
		}
	}
	writeMetrics(rec)
}

func writeMetrics(rec *metrics.Recorder) {
	if *metricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(*metricsFile); err != nil {
		glog.Warningf("unable to write metrics to %q: %s", *metricsFile, err)
	}
}

// exit writes the metrics gathered so far and terminates with the exit
// status of err.
func exit(rec *metrics.Recorder, err error) {
	writeMetrics(rec)
	glog.Errorf("%s", err)
	glog.Flush()
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(rfi.ExitStatus(err))
}

func writeCSV(path string, params rfi.Params, found *scan.Result, res *aggregate.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %q: %s", path, err)
	}
	defer f.Close()
	rows := export.MatrixRows(uuid.NewString(), params, found.Slots, res.Frequency, res.Matrix)
	return export.Send(context.Background(), &export.CSV{W: f}, rows)
}
