package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/kernel"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/memoria"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

// textoListado arma la vista de screen -ls: utilización, procesos corriendo
// con su avance y procesos finalizados con su hora de fin
func textoListado(pl *kernel.Planificador) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Utilización de CPU: %.2f%%\n", pl.UtilizacionCPU())
	fmt.Fprintf(&b, "Núcleos en uso:     %d\n", pl.NucleosUsados())
	fmt.Fprintf(&b, "Núcleos libres:     %d\n\n", pl.NucleosDisponibles())

	b.WriteString("----------------------------\n")
	b.WriteString("Procesos en ejecución:\n")

	ejecutando := pl.ProcesosEjecutando()
	if len(ejecutando) == 0 {
		b.WriteString("  No hay procesos en ejecución.\n")
	} else {
		ahora := time.Now().Format("01/02/2006 03:04:05PM")
		for _, p := range ejecutando {
			fmt.Fprintf(&b, "%-15s (%s) Core:%d %d / %d\n",
				p.Nombre(), ahora, p.UltimoNucleo(), p.PC(), p.TotalInstrucciones())
		}
	}

	b.WriteString("\nProcesos finalizados:\n")
	finalizados := pl.ProcesosFinalizados()
	if len(finalizados) == 0 {
		b.WriteString("  Ningún proceso finalizó todavía.\n")
	} else {
		for _, p := range finalizados {
			fmt.Fprintf(&b, "%-15s (%s) Finalizado %d / %d\n",
				p.Nombre(), p.HoraFin().Format("01/02/2006 03:04:05PM"),
				p.PC(), p.TotalInstrucciones())
		}
	}
	b.WriteString("----------------------------\n")
	return b.String()
}

// textoProcessSmi arma el resumen de alto nivel de CPU y memoria
func textoProcessSmi(pl *kernel.Planificador, mem *memoria.Administrador) string {
	var b strings.Builder

	b.WriteString("+--------------------------------------------------+\n")
	b.WriteString("| PROCESS-SMI V01.00   Driver Version: 01.00       |\n")
	b.WriteString("+--------------------------------------------------+\n")

	fmt.Fprintf(&b, "| CPU-Util: %-38s |\n", fmt.Sprintf("%.2f%%", pl.UtilizacionCPU()))

	memoriaUsada := mem.MarcosUsados() * mem.TamanioMarco()
	memoriaTotal := mem.TamanioTotal()
	var utilizacionMemoria float64
	if memoriaTotal > 0 {
		utilizacionMemoria = float64(memoriaUsada) / float64(memoriaTotal) * 100
	}
	fmt.Fprintf(&b, "| Memoria usada: %-33s |\n", fmt.Sprintf("%dB / %dB", memoriaUsada, memoriaTotal))
	fmt.Fprintf(&b, "| Utilización de memoria: %-24s |\n", fmt.Sprintf("%.2f%%", utilizacionMemoria))
	b.WriteString("+--------------------------------------------------+\n")

	b.WriteString("Procesos en ejecución y su memoria:\n")
	ejecutando := pl.ProcesosEjecutando()
	if len(ejecutando) == 0 {
		b.WriteString("  No hay procesos en ejecución.\n")
	} else {
		for _, p := range ejecutando {
			fmt.Fprintf(&b, "  %-15s %dB\n", p.Nombre(), p.MemoriaAsignada())
		}
	}
	b.WriteString("+--------------------------------------------------+\n")
	return b.String()
}

// textoVmstat arma la tabla de estadísticas de memoria virtual y ticks de CPU
func textoVmstat(pl *kernel.Planificador, mem *memoria.Administrador, reloj *utils.Reloj) string {
	memoriaTotal := mem.TamanioTotal()
	memoriaUsada := mem.MarcosUsados() * mem.TamanioMarco()
	memoriaLibre := memoriaTotal - memoriaUsada

	ticksTotales := reloj.Actual()
	ticksActivos := pl.TicksActivos()
	var ticksOciosos uint64
	if ticksTotales > ticksActivos {
		ticksOciosos = ticksTotales - ticksActivos
	}

	var b strings.Builder
	b.WriteString("\n+=======================================================================+\n")
	b.WriteString("|                   ESTADISTICAS DE MEMORIA VIRTUAL                     |\n")
	b.WriteString("+=======================================================================+\n")
	b.WriteString("+-------------------------------+---------------------------------------+\n")
	b.WriteString("| Métrica                       | Valor                                 |\n")
	b.WriteString("+-------------------------------+---------------------------------------+\n")

	fila := func(nombre string, valor interface{}) {
		fmt.Fprintf(&b, "| %-29s | %37v |\n", nombre, valor)
	}
	fila("Memoria total (bytes)", memoriaTotal)
	fila("Memoria usada (bytes)", memoriaUsada)
	fila("Memoria libre (bytes)", memoriaLibre)
	fila("Tamaño de marco (bytes)", mem.TamanioMarco())
	fila("Ticks de CPU ociosos", ticksOciosos)
	fila("Ticks de CPU activos", ticksActivos)
	fila("Ticks de CPU totales", ticksTotales)
	fila("Páginas subidas", mem.PaginadasEntrantes())
	fila("Páginas bajadas", mem.PaginadasSalientes())
	b.WriteString("+=======================================================================+\n\n")
	return b.String()
}

// GenerarReporte vuelca el listado de utilización al archivo indicado,
// sobreescribiendo el reporte anterior
func GenerarReporte(ruta string, pl *kernel.Planificador) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Reporte del emulador - %s\n\n", time.Now().Format("01/02/2006, 03:04:05 PM"))
	b.WriteString(textoListado(pl))
	return os.WriteFile(ruta, []byte(b.String()), 0644)
}
