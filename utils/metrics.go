package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики реконструкции
	Reconstructions         int64
	ReconstructionsByMethod map[string]int64
	ConsistencyWarnings     int64
	LastWarningTime         time.Time

	// Метрики сверки
	Reconciliations          int64
	AdjustmentsCreated       int64
	ZeroDeltaReconciliations int64
	ConcurrentConflicts      int64
	SchedulerAnchors         int64
	LastReconciliation       time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ReconstructionsByMethod: make(map[string]int64),
			ErrorTypes:              make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if err != nil {
		m.FailedRequests++
		m.recordError(err)
	}
}

// RecordReconstruction записывает метрики реконструкции баланса
func (m *Metrics) RecordReconstruction(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reconstructions++
	m.ReconstructionsByMethod[method]++
}

// RecordConsistencyWarning записывает расхождение реконструкции
func (m *Metrics) RecordConsistencyWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConsistencyWarnings++
	m.LastWarningTime = time.Now()
}

// RecordReconciliation записывает метрики сверки
func (m *Metrics) RecordReconciliation(adjusted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reconciliations++
	m.LastReconciliation = time.Now()
	if adjusted {
		m.AdjustmentsCreated++
	} else {
		m.ZeroDeltaReconciliations++
	}
}

// RecordConcurrentConflict записывает отклоненную параллельную сверку
func (m *Metrics) RecordConcurrentConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConcurrentConflicts++
}

// RecordSchedulerAnchor записывает якорь, созданный планировщиком
func (m *Metrics) RecordSchedulerAnchor() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SchedulerAnchors++
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordError(err)
}

func (m *Metrics) recordError(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byMethod := make(map[string]int64, len(m.ReconstructionsByMethod))
	for k, v := range m.ReconstructionsByMethod {
		byMethod[k] = v
	}

	return map[string]interface{}{
		"total_requests":             m.TotalRequests,
		"failed_requests":            m.FailedRequests,
		"average_latency":            m.AverageLatency,
		"reconstructions":            m.Reconstructions,
		"reconstructions_by_method":  byMethod,
		"consistency_warnings":       m.ConsistencyWarnings,
		"reconciliations":            m.Reconciliations,
		"adjustments_created":        m.AdjustmentsCreated,
		"zero_delta_reconciliations": m.ZeroDeltaReconciliations,
		"concurrent_conflicts":       m.ConcurrentConflicts,
		"scheduler_anchors":          m.SchedulerAnchors,
		"error_count":                m.ErrorCount,
		"last_error_time":            m.LastErrorTime,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.Reconstructions = 0
	m.ReconstructionsByMethod = make(map[string]int64)
	m.ConsistencyWarnings = 0
	m.Reconciliations = 0
	m.AdjustmentsCreated = 0
	m.ZeroDeltaReconciliations = 0
	m.ConcurrentConflicts = 0
	m.SchedulerAnchors = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
