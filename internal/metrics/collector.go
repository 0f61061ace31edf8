package metrics

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Collector 周期性采集数据库侧指标
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	cancel   context.CancelFunc
}

// NewCollector 创建指标采集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Collector{db: db, interval: interval}
}

// Start 启动后台采集
func (c *Collector) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.collect()
			}
		}
	}()
}

// Stop 停止采集
func (c *Collector) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Collector) collect() {
	if err := UpdateDatabaseConnections(c.db); err != nil {
		logrus.WithError(err).Warn("采集数据库连接指标失败")
	}
	if err := UpdateApprovalsByStatus(c.db); err != nil {
		logrus.WithError(err).Warn("采集审批状态分布指标失败")
	}
}
