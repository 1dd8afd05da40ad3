package logger

import (
	"log"

	"go.uber.org/zap"
)

// Init 初始化全局 zap logger，之后各处统一使用 zap.L()
func Init() {
	l, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	zap.ReplaceGlobals(l)
}
