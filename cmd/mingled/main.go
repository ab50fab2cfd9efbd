package main

import (
	"flag"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/mingle-app/mingle/internal/config"
	"github.com/mingle-app/mingle/internal/daemon"
)

func main() {
	listenFlag := flag.String("listen", "", "listen address (overrides config)")
	dataDirFlag := flag.String("data-dir", "", "data directory (default ~/.mingle)")
	flag.Parse()

	// Optional .env for local development; env vars feed the resolvers.
	_ = godotenv.Load()

	dataDir := config.ResolveDataDir(*dataDirFlag)
	listenAddr := config.ResolveListenAddr(dataDir, *listenFlag)

	app := fx.New(
		daemon.Module(daemon.Params{
			DataDir:    dataDir,
			ListenAddr: listenAddr,
		}),
	)

	app.Run()
}
