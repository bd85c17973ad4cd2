package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// MaintenanceService 定时任务
// 目前只有一项：从数据库重新同步全文索引，覆盖导入脚本或其他实例写入的内容
type MaintenanceService struct {
	catalog  *CatalogService
	interval time.Duration
	log      *logrus.Entry
}

// NewMaintenanceService 创建定时任务服务
func NewMaintenanceService(catalog *CatalogService, interval time.Duration, log *logrus.Logger) *MaintenanceService {
	return &MaintenanceService{
		catalog:  catalog,
		interval: interval,
		log:      log.WithField("component", "maintenance"),
	}
}

// Start 启动定时任务，ctx 取消后退出
func (s *MaintenanceService) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *MaintenanceService) runOnce(ctx context.Context) {
	start := time.Now()
	n, err := s.catalog.RebuildIndex(ctx)
	if err != nil {
		s.log.WithError(err).Error("同步搜索索引失败")
		return
	}
	s.log.WithFields(logrus.Fields{
		"documents": n,
		"elapsed":   time.Since(start).String(),
	}).Debug("搜索索引已同步")
}
