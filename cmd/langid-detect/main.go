// Command langid-detect classifies text from the command line or stdin
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"langid"
	"langid/internal/core/version"
	"langid/internal/platform/config"
	"langid/internal/platform/logger"
)

func main() {
	cfg := config.New().Prefix("LANGID_")
	l := logger.Get()

	var (
		modelPath = flag.String("model", cfg.MayString("MODEL", ""), "path to the model blob (or set LANGID_MODEL)")
		threshold = flag.Float64("threshold", cfg.MayFloat64("THRESHOLD", -1), "override the reliability threshold; negative keeps the model's")
		deflang   = flag.String("default", cfg.MayString("DEFAULT", "und"), "language reported for unreliable text")
		all       = flag.Bool("all", false, "print the full distribution instead of the top language")
		showVer   = flag.Bool("version", false, "print build information and exit")
	)
	flag.Parse()

	if *showVer {
		bi := version.Info()
		fmt.Printf("%s %s (%s, %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
		return
	}

	if *modelPath == "" {
		l.Fatal().Msg("no model: pass -model or set LANGID_MODEL")
	}

	h := langid.New(*modelPath)
	if !h.IsValid() {
		l.Fatal().Str("model", *modelPath).Msg("model failed to load")
	}
	h.SetDefaultLanguage(*deflang)
	if *threshold >= 0 {
		h.SetProbabilityThreshold(float32(*threshold))
	}
	l.Debug().
		Int("version", h.ModelVersion()).
		Strs("languages", h.Languages()).
		Msg("model loaded")

	classify := func(text string) {
		if *all {
			for _, p := range h.FindLanguages(text) {
				fmt.Printf("%s\t%.4f\n", p.Language, p.Probability)
			}
			return
		}
		fmt.Println(h.FindLanguage(text))
	}

	if args := flag.Args(); len(args) > 0 {
		classify(strings.Join(args, " "))
		return
	}

	// no args: one classification per stdin line
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		classify(sc.Text())
	}
	if err := sc.Err(); err != nil {
		l.Fatal().Err(err).Msg("stdin read failed")
	}
}
