package observability

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics is the process-wide registry, exposed in Prometheus text format.
// A nil receiver is valid on every method so call sites never branch on
// whether metrics are enabled.
type Metrics struct {
	apiRequests *counterVec
	apiLatency  *histogramVec
	apiInflight *scalar

	predictions       *counterVec
	predictionLatency *histogramVec

	finishTotal *scalar
	resetTotal  *scalar
	chainLength *scalar
}

var (
	initOnce sync.Once
	instance *Metrics
)

func metricsEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("APA_METRICS_ENABLED"))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// InitMetrics builds the registry when APA_METRICS_ENABLED is set and
// returns nil otherwise.
func InitMetrics() *Metrics {
	if !metricsEnabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = &Metrics{
			apiRequests: newCounterVec("apa_api_requests_total", "Count of handled API requests.", []string{"method", "route", "status"}),
			apiLatency: newHistogramVec(
				"apa_api_request_duration_seconds",
				"Latency of handled API requests in seconds.",
				[]string{"method", "route", "status"},
				[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			),
			apiInflight: newScalar("apa_api_inflight_requests", "API requests currently being served.", "gauge"),
			predictions: newCounterVec("apa_predictions_total", "Prediction calls by outcome.", []string{"outcome"}),
			predictionLatency: newHistogramVec(
				"apa_prediction_duration_seconds",
				"Prediction call latency in seconds by outcome.",
				[]string{"outcome"},
				[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
			),
			finishTotal: newScalar("apa_finish_total", "Completed finish workflows.", "counter"),
			resetTotal:  newScalar("apa_reset_total", "Chain resets.", "counter"),
			chainLength: newScalar("apa_chain_length", "Current chain length.", "gauge"),
		}
	})
	return instance
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orElse(method, "UNKNOWN")
	route = orElse(route, "unknown")
	status = orElse(status, "0")
	m.apiRequests.inc(method, route, status)
	m.apiLatency.observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.val.add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.val.add(-1)
}

// ObservePrediction records one recommendation service call. outcome is one
// of ok, timeout, status_error, decode_error, error.
func (m *Metrics) ObservePrediction(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	outcome = orElse(outcome, "unknown")
	m.predictions.inc(outcome)
	m.predictionLatency.observe(dur.Seconds(), outcome)
}

func (m *Metrics) IncFinish() {
	if m == nil {
		return
	}
	m.finishTotal.val.add(1)
}

func (m *Metrics) IncReset() {
	if m == nil {
		return
	}
	m.resetTotal.val.add(1)
}

func (m *Metrics) SetChainLength(n int) {
	if m == nil {
		return
	}
	m.chainLength.val.store(float64(n))
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.writeTo(w)
}

func (m *Metrics) writeTo(w io.Writer) error {
	for _, write := range []func(io.Writer) error{
		m.apiRequests.write,
		m.apiLatency.write,
		m.apiInflight.write,
		m.predictions.write,
		m.predictionLatency.write,
		m.finishTotal.write,
		m.resetTotal.write,
		m.chainLength.write,
	} {
		if err := write(w); err != nil {
			return err
		}
	}
	return nil
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// desc is the identity of one metric family.
type desc struct {
	name   string
	help   string
	kind   string
	labels []string
}

func (d desc) writeHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", d.name, d.help, d.name, d.kind)
	return err
}

// atomicFloat is a float64 updated via compare-and-swap on its bit pattern.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) add(delta float64) {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+delta)) {
			return
		}
	}
}

func (f *atomicFloat) store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *atomicFloat) load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// scalar is an unlabeled counter or gauge.
type scalar struct {
	desc desc
	val  atomicFloat
}

func newScalar(name, help, kind string) *scalar {
	return &scalar{desc: desc{name: name, help: help, kind: kind}}
}

func (s *scalar) write(w io.Writer) error {
	if err := s.desc.writeHeader(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, s.desc.name+" "+formatFloat(s.val.load())+"\n")
	return err
}

// counterVec is a labeled counter family. Series are keyed by their label
// values joined with NUL; label strings are rendered only at scrape time.
type counterVec struct {
	desc   desc
	mu     sync.RWMutex
	series map[string]*atomicFloat
}

func newCounterVec(name, help string, labels []string) *counterVec {
	return &counterVec{
		desc:   desc{name: name, help: help, kind: "counter", labels: labels},
		series: map[string]*atomicFloat{},
	}
}

func (v *counterVec) inc(values ...string) {
	key := seriesKey(len(v.desc.labels), values)
	v.mu.RLock()
	f := v.series[key]
	v.mu.RUnlock()
	if f == nil {
		v.mu.Lock()
		if f = v.series[key]; f == nil {
			f = &atomicFloat{}
			v.series[key] = f
		}
		v.mu.Unlock()
	}
	f.add(1)
}

func (v *counterVec) write(w io.Writer) error {
	v.mu.RLock()
	keys := make([]string, 0, len(v.series))
	for k := range v.series {
		keys = append(keys, k)
	}
	v.mu.RUnlock()
	sort.Strings(keys)

	if err := v.desc.writeHeader(w); err != nil {
		return err
	}
	for _, k := range keys {
		v.mu.RLock()
		f := v.series[k]
		v.mu.RUnlock()
		line := v.desc.name + renderLabels(v.desc.labels, splitKey(k), "", "") + " " + formatFloat(f.load()) + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// histogramVec is a labeled histogram family. counts holds one slot per
// bound plus the overflow; cumulative totals are computed when written.
type histogramVec struct {
	desc   desc
	bounds []float64
	mu     sync.Mutex
	series map[string]*histogramSeries
}

type histogramSeries struct {
	counts []uint64
	sum    float64
	n      uint64
}

func newHistogramVec(name, help string, labels []string, bounds []float64) *histogramVec {
	return &histogramVec{
		desc:   desc{name: name, help: help, kind: "histogram", labels: labels},
		bounds: bounds,
		series: map[string]*histogramSeries{},
	}
}

func (h *histogramVec) observe(v float64, values ...string) {
	key := seriesKey(len(h.desc.labels), values)
	h.mu.Lock()
	s := h.series[key]
	if s == nil {
		s = &histogramSeries{counts: make([]uint64, len(h.bounds)+1)}
		h.series[key] = s
	}
	s.counts[sort.SearchFloat64s(h.bounds, v)]++
	s.sum += v
	s.n++
	h.mu.Unlock()
}

func (h *histogramVec) write(w io.Writer) error {
	type snapshot struct {
		key    string
		counts []uint64
		sum    float64
		n      uint64
	}
	h.mu.Lock()
	snaps := make([]snapshot, 0, len(h.series))
	for k, s := range h.series {
		counts := make([]uint64, len(s.counts))
		copy(counts, s.counts)
		snaps = append(snaps, snapshot{key: k, counts: counts, sum: s.sum, n: s.n})
	}
	h.mu.Unlock()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].key < snaps[j].key })

	if err := h.desc.writeHeader(w); err != nil {
		return err
	}
	for _, s := range snaps {
		values := splitKey(s.key)
		var cum uint64
		for i, bound := range h.bounds {
			cum += s.counts[i]
			line := h.desc.name + "_bucket" + renderLabels(h.desc.labels, values, "le", formatFloat(bound)) + " " + strconv.FormatUint(cum, 10) + "\n"
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
		}
		cum += s.counts[len(s.counts)-1]
		lines := h.desc.name + "_bucket" + renderLabels(h.desc.labels, values, "le", "+Inf") + " " + strconv.FormatUint(cum, 10) + "\n" +
			h.desc.name + "_sum" + renderLabels(h.desc.labels, values, "", "") + " " + formatFloat(s.sum) + "\n" +
			h.desc.name + "_count" + renderLabels(h.desc.labels, values, "", "") + " " + strconv.FormatUint(s.n, 10) + "\n"
		if _, err := io.WriteString(w, lines); err != nil {
			return err
		}
	}
	return nil
}

// seriesKey joins label values with NUL, padding or truncating to n so a
// malformed call site cannot split one logical series in two.
func seriesKey(n int, values []string) string {
	if len(values) != n {
		fixed := make([]string, n)
		copy(fixed, values)
		for i := len(values); i < n; i++ {
			fixed[i] = "unknown"
		}
		values = fixed
	}
	return strings.Join(values, "\x00")
}

func splitKey(key string) []string {
	return strings.Split(key, "\x00")
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// renderLabels formats {a="x",b="y"}, appending the extra pair (le buckets)
// when extraName is non-empty.
func renderLabels(names, values []string, extraName, extraValue string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(labelEscaper.Replace(values[i]))
		b.WriteByte('"')
	}
	if extraName != "" {
		if len(names) > 0 {
			b.WriteByte(',')
		}
		b.WriteString(extraName)
		b.WriteString(`="`)
		b.WriteString(labelEscaper.Replace(extraValue))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
