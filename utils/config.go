package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CargarConfiguracion lee y decodifica un archivo de configuración JSON al
// tipo indicado. Cualquier falla de lectura o decodificación es estructural:
// el emulador no puede arrancar sin configuración válida.
func CargarConfiguracion[T any](ruta string) *T {
	InfoLog.Info("Cargando configuración", "ruta", ruta)

	absPath, err := filepath.Abs(ruta)
	if err != nil {
		ErrorLog.Error("Error obteniendo ruta absoluta", "error", err, "ruta", ruta)
		os.Exit(1)
	}

	file, err := os.Open(absPath)
	if err != nil {
		ErrorLog.Error("Error abriendo archivo de configuración", "error", err, "archivo", absPath)
		os.Exit(1)
	}
	defer file.Close()

	var config T
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		ErrorLog.Error("Error decodificando configuración", "error", err, "archivo", absPath)
		os.Exit(1)
	}

	InfoLog.Info("Configuración cargada correctamente")
	return &config
}
