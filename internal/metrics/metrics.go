package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedsFailed        int64
	ArticlesFetched    int64
	DuplicatesFiltered int64
	ImagesFound        int64
	SummariesOK        int64
	SummariesFailed    int64
	MessagesSent       int64
	MessagesFailed     int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) add(counter *int64, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter += n
}

func (m *Metrics) IncrementFeedsFetched() { m.add(&m.FeedsFetched, 1) }
func (m *Metrics) IncrementFeedsFailed() { m.add(&m.FeedsFailed, 1) }
func (m *Metrics) AddArticlesFetched(n int) { m.add(&m.ArticlesFetched, int64(n)) }
func (m *Metrics) AddDuplicatesFiltered(n int) { m.add(&m.DuplicatesFiltered, int64(n)) }
func (m *Metrics) IncrementImagesFound() { m.add(&m.ImagesFound, 1) }
func (m *Metrics) IncrementSummariesOK() { m.add(&m.SummariesOK, 1) }
func (m *Metrics) IncrementSummariesFailed() { m.add(&m.SummariesFailed, 1) }
func (m *Metrics) IncrementMessagesSent() { m.add(&m.MessagesSent, 1) }
func (m *Metrics) IncrementMessagesFailed() { m.add(&m.MessagesFailed, 1) }

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":              m.FeedsFetched,
		"feeds_failed":               m.FeedsFailed,
		"articles_fetched":           m.ArticlesFetched,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"images_found":               m.ImagesFound,
		"summaries_ok":               m.SummariesOK,
		"summaries_failed":           m.SummariesFailed,
		"messages_sent":              m.MessagesSent,
		"messages_failed":            m.MessagesFailed,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
