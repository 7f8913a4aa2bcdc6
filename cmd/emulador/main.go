package main

import (
	"fmt"
	"os"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

func main() {
	rutaConfig := "config.json"
	if len(os.Args) > 1 {
		rutaConfig = os.Args[1]
	}

	if _, err := os.Stat(rutaConfig); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Uso: %s [archivo_configuracion]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "El archivo de configuración %q no existe\n", rutaConfig)
		os.Exit(1)
	}

	cfg := utils.CargarConfiguracion[Config](rutaConfig)
	cfg.AplicarDefaults()

	utils.InicializarLogger(cfg.NivelLog, "emulador")
	utils.InfoLog.Info("Emulador iniciando", "config", rutaConfig)

	if err := cfg.Validar(); err != nil {
		utils.ErrorLog.Error("Configuración inválida", "error", err)
		os.Exit(1)
	}

	consola := NuevaConsola(cfg, os.Stdout)
	consola.Ejecutar(os.Stdin)

	utils.InfoLog.Info("Emulador finalizado")
}
