package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 审批申请创建数
	approvalsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "approval_requests_created_total",
			Help: "Total number of approval requests created",
		},
	)

	// 审批决定数
	approvalDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Total number of approval decisions",
		},
		[]string{"action"}, // approve, reject
	)

	// 附件上传数,按结果区分
	attachmentUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attachment_uploads_total",
			Help: "Total number of attachment uploads",
		},
		[]string{"result"}, // success, failure
	)

	// 补偿删除失败数
	// 补偿失败意味着对象存储中可能残留无引用的孤儿对象,需要人工清理
	compensationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attachment_compensation_failures_total",
			Help: "Total number of failed compensation deletes after an upload failure",
		},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// 审批申请状态分布
	approvalsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "approval_requests_by_status",
			Help: "Number of approval requests by status",
		},
		[]string{"status"},
	)
)

var once sync.Once

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(approvalsCreatedTotal)
	prometheus.MustRegister(approvalDecisionsTotal)
	prometheus.MustRegister(attachmentUploadsTotal)
	prometheus.MustRegister(compensationFailuresTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(approvalsByStatus)

	// 注册 Go 运行时指标(只注册一次,已注册则忽略)
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求,status 标签为数字状态码
func RecordAPIRequest(method, path string, status int, duration float64) {
	apiRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordApprovalCreated 记录审批申请创建
func RecordApprovalCreated() {
	approvalsCreatedTotal.Inc()
}

// RecordApprovalDecision 记录审批决定
func RecordApprovalDecision(action string) {
	approvalDecisionsTotal.WithLabelValues(action).Inc()
}

// RecordAttachmentUpload 记录一次附件上传结果
func RecordAttachmentUpload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	attachmentUploadsTotal.WithLabelValues(result).Inc()
}

// RecordCompensationFailure 记录一次补偿删除失败
func RecordCompensationFailure() {
	compensationFailuresTotal.Inc()
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.InUse))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	return nil
}

// UpdateApprovalsByStatus 更新审批申请状态分布指标
// 每轮对四个已知状态全量赋值,数量降为 0 的状态不会残留旧值
func UpdateApprovalsByStatus(db *gorm.DB) error {
	type row struct {
		CurrentStatus string
		Count         int64
	}
	var rows []row
	err := db.Model(&model.ApprovalRequestModel{}).
		Select("current_status, count(*) as count").
		Group("current_status").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	counts := map[string]int64{
		string(model.StatusDraft):    0,
		string(model.StatusPending):  0,
		string(model.StatusApproved): 0,
		string(model.StatusRejected): 0,
	}
	for _, r := range rows {
		counts[r.CurrentStatus] = r.Count
	}
	for status, count := range counts {
		approvalsByStatus.WithLabelValues(status).Set(float64(count))
	}
	return nil
}
