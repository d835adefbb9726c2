package capital

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// Feed loads the broker instrument universe from the exported
// instruments CSV.
type Feed struct {
	path string
	log  *logger.Logger
}

func NewFeed(path string, log *logger.Logger) *Feed {
	return &Feed{path: path, log: log}
}

// Load parses the instruments CSV. Rows with a malformed numeric field
// are skipped with a warning rather than failing the run.
func (f *Feed) Load() ([]contracts.Instrument, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open instruments csv: %w", err)
	}
	defer file.Close()
	return f.parse(file)
}

func (f *Feed) parse(r io.Reader) ([]contracts.Instrument, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"epic", "name", "bid", "ask"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("instruments csv missing column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []contracts.Instrument
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			f.log.WithError(err).WithField("line", line).Warn("Skipping malformed csv row")
			continue
		}

		bid, errB := parseFloat(field(rec, "bid"))
		ask, errA := parseFloat(field(rec, "ask"))
		if errB != nil || errA != nil {
			f.log.WithField("line", line).Warn("Skipping row with unparseable quote")
			continue
		}

		inst := contracts.Instrument{
			Epic:       field(rec, "epic"),
			Name:       field(rec, "name"),
			Sector:     field(rec, "sector"),
			Country:    field(rec, "country"),
			AssetClass: field(rec, "asset_class"),
			Bid:        bid,
			Ask:        ask,
			IsUSStock:  parseBool(field(rec, "is_us_stock")),
		}
		if inst.Epic == "" {
			continue
		}
		if mid := inst.MidPrice(); mid > 0 {
			inst.SpreadPct = (ask - bid) / mid
		}
		out = append(out, inst)
	}

	f.log.WithField("count", len(out)).Info("Loaded instrument feed")
	return out, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
