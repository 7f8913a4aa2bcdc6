package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func configDePrueba(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		NumCPU:               1,
		Planificador:         "rr",
		QuantumCiclos:        2,
		FrecuenciaGeneracion: 1000,
		MinInstrucciones:     1,
		MaxInstrucciones:     2,
		MemoriaTotal:         256,
		TamanioMarco:         64,
		MinMemoriaProceso:    64,
		MaxMemoriaProceso:    128,
		ArchivoBacking:       filepath.Join(dir, "backing.txt"),
		ArchivoVmstat:        filepath.Join(dir, "vmstat.txt"),
		ArchivoReporte:       filepath.Join(dir, "reporte.txt"),
	}
}

func ejecutarComandos(t *testing.T, cfg *Config, comandos string) string {
	t.Helper()
	var salida bytes.Buffer
	consola := NuevaConsola(cfg, &salida)
	consola.Ejecutar(strings.NewReader(comandos))
	return salida.String()
}

func TestConsolaRequiereInicializacion(t *testing.T) {
	salida := ejecutarComandos(t, configDePrueba(t), "screen -ls\nexit\n")
	if !strings.Contains(salida, "no está inicializado") {
		t.Errorf("Los comandos previos a initialize debían rechazarse, salida:\n%s", salida)
	}
}

func TestConsolaComandoDesconocido(t *testing.T) {
	salida := ejecutarComandos(t, configDePrueba(t), "zzz\nexit\n")
	if !strings.Contains(salida, "Comando desconocido: zzz") {
		t.Errorf("El comando inválido debía reportarse, salida:\n%s", salida)
	}
}

func TestConsolaFlujoCompleto(t *testing.T) {
	cfg := configDePrueba(t)
	comandos := strings.Join([]string{
		"initialize",
		"screen -s test 128",
		"screen -ls",
		"process-smi",
		"vmstat",
		"report-util",
		"exit",
	}, "\n") + "\n"

	salida := ejecutarComandos(t, cfg, comandos)

	for _, fragmento := range []string{
		"Emulador inicializado",
		"Proceso 'test' creado y admitido.",
		"Utilización de CPU:",
		"PROCESS-SMI",
		"ESTADISTICAS DE MEMORIA VIRTUAL",
		"Reporte escrito en",
	} {
		if !strings.Contains(salida, fragmento) {
			t.Errorf("La salida debía contener %q, salida:\n%s", fragmento, salida)
		}
	}

	reporte, err := os.ReadFile(cfg.ArchivoReporte)
	if err != nil {
		t.Fatalf("El reporte debía escribirse: %v", err)
	}
	if !strings.Contains(string(reporte), "Reporte del emulador") {
		t.Errorf("El reporte no tiene el encabezado esperado:\n%s", reporte)
	}
}

func TestConsolaTamanioInvalido(t *testing.T) {
	cfg := configDePrueba(t)
	salida := ejecutarComandos(t, cfg, "initialize\nscreen -s malo 100\nexit\n")
	if !strings.Contains(salida, "Tamaño inválido") {
		t.Errorf("Un tamaño que no es potencia de dos debía rechazarse, salida:\n%s", salida)
	}
}

func TestConsolaScriptPropio(t *testing.T) {
	cfg := configDePrueba(t)
	comandos := "initialize\nscreen -c mio 128 \"DECLARE x 5; ADD x x 1\"\nexit\n"
	salida := ejecutarComandos(t, cfg, comandos)
	if !strings.Contains(salida, "Proceso 'mio' creado y admitido.") {
		t.Errorf("El proceso por script debía admitirse, salida:\n%s", salida)
	}
}

func TestConsolaScriptInvalido(t *testing.T) {
	cfg := configDePrueba(t)
	comandos := "initialize\nscreen -c malo 128 \"\"\nexit\n"
	salida := ejecutarComandos(t, cfg, comandos)
	if !strings.Contains(salida, "Uso: screen -c") {
		t.Errorf("Un script vacío debía mostrar el uso, salida:\n%s", salida)
	}
}
