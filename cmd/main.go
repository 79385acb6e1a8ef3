package main

import (
	"fmt"
	"log"
	"os"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/config"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/server"
	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	ClearConsole()
	DrawLogo()
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting Grow Flow hub v%s", nuts.GetVersion())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	nuts.SetLoglevel(cfg.Monitoring.Level(), "hydro-hub", false, "")
	if cfg.Database.InMemory() {
		nuts.L.Warnf("[Main] database.driver=memory, nothing will be persisted")
	}

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen before the logo is drawn.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   ______                     ________             ",
		"  / ____/________ _      __  / ____/ /___ _      __",
		" / / __/ ___/ __ \\ | /| / / / /_  / / __ \\ | /| / /",
		"/ /_/ / /  / /_/ / |/ |/ / / __/ / / /_/ / |/ |/ / ",
		"\\____/_/   \\____/|__/|__/ /_/   /_/\\____/|__/|__/  ",
		tm.Color("..................... hydroponics hub ", tm.GREEN) + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
