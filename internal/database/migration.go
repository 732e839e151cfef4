package database

import (
	"github.com/wfunc/snake-talk/internal/logger"
	"github.com/wfunc/snake-talk/internal/models"
	"go.uber.org/zap"
)

// migrationModels 需要迁移的模型列表
var migrationModels = []interface{}{
	&models.Session{},
	&models.TurnRecord{},
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	logger.Info("开始数据库迁移")

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("表迁移失败",
				zap.Any("model", model),
				zap.Error(err))
			return err
		}
	}

	logger.Info("数据库迁移完成", zap.Int("tables", len(migrationModels)))
	return nil
}

// DropAllTables 删除所有表（仅用于测试环境）
func DropAllTables() error {
	for _, model := range migrationModels {
		if err := DB.Migrator().DropTable(model); err != nil {
			return err
		}
	}
	return nil
}
