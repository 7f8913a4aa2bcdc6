package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/kernel"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/memoria"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

func planificadorVacio() (*kernel.Planificador, *memoria.Administrador, *utils.Reloj) {
	mem := memoria.NuevoAdministrador(256, 64, 64, 128, "", "")
	reloj := utils.NuevoReloj(0)
	pl := kernel.NuevoPlanificador(2, kernel.PlanificadorFCFS, 3, 100, 1, 2, 0, mem, reloj)
	return pl, mem, reloj
}

func TestTextoListadoSinProcesos(t *testing.T) {
	pl, _, _ := planificadorVacio()
	texto := textoListado(pl)

	for _, fragmento := range []string{
		"Utilización de CPU: 0.00%",
		"Núcleos libres:     2",
		"No hay procesos en ejecución.",
		"Ningún proceso finalizó todavía.",
	} {
		if !strings.Contains(texto, fragmento) {
			t.Errorf("El listado debía contener %q, texto:\n%s", fragmento, texto)
		}
	}
}

func TestTextoVmstatSinActividad(t *testing.T) {
	pl, mem, reloj := planificadorVacio()
	texto := textoVmstat(pl, mem, reloj)

	for _, fragmento := range []string{
		"ESTADISTICAS DE MEMORIA VIRTUAL",
		"Memoria total (bytes)",
		"Tamaño de marco (bytes)",
		"Páginas subidas",
	} {
		if !strings.Contains(texto, fragmento) {
			t.Errorf("El vmstat debía contener %q, texto:\n%s", fragmento, texto)
		}
	}
}

func TestGenerarReporteEscribeArchivo(t *testing.T) {
	pl, _, _ := planificadorVacio()
	ruta := filepath.Join(t.TempDir(), "reporte.txt")

	if err := GenerarReporte(ruta, pl); err != nil {
		t.Fatalf("Error generando el reporte: %v", err)
	}
	contenido, err := os.ReadFile(ruta)
	if err != nil {
		t.Fatalf("El reporte debía existir: %v", err)
	}
	if !strings.Contains(string(contenido), "Reporte del emulador") {
		t.Errorf("El reporte no tiene el encabezado esperado:\n%s", contenido)
	}
}
