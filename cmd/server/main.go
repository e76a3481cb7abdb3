package main

import (
	"fmt"
	"os"

	"github.com/yungbote/outloud-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	port := application.Cfg.Port
	application.Log.Info("Server listening", "port", port)
	if err := application.Run(":" + port); err != nil {
		application.Log.Error("Server failed", "error", err.Error())
		os.Exit(1)
	}
}
