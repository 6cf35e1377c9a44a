package testtool

import (
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	"focushub/pkg/config"
	"focushub/pkg/logger"
)

// StartPprof serves pprof on 127.0.0.1:6060 outside production
func StartPprof() {
	if config.IsProduction() {
		logger.Log.Info("Production environment detected, pprof is disabled.")
		return
	}

	go func() {
		logger.Log.Info("Starting pprof server on 127.0.0.1:6060")
		if err := http.ListenAndServe("127.0.0.1:6060", nil); err != nil {
			logger.Log.Errorf("pprof server failed:", err)
		}
	}()
}
