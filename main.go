package main

import (
	"context"
	"encoding/json"

	_ "github.com/lumiforge/adpilot-backend/docs"
	"github.com/lumiforge/adpilot-backend/internal/cloudfunction"
)

// EntryPoint - точка входа для Yandex Cloud Function
func EntryPoint(ctx context.Context, request json.RawMessage) ([]byte, error) {
	return cloudfunction.Handler(ctx, request)
}
