package main

import (
	"fmt"
)

// Config reúne todas las opciones del emulador. Las claves JSON siguen la
// nomenclatura histórica del archivo de configuración.
type Config struct {
	NumCPU               int    `json:"num-cpu"`
	Planificador         string `json:"scheduler"`
	QuantumCiclos        uint64 `json:"quantum-cycles"`
	FrecuenciaGeneracion uint64 `json:"batch-process-freq"`
	MinInstrucciones     int    `json:"min-ins"`
	MaxInstrucciones     int    `json:"max-ins"`
	DelayPorExec         uint64 `json:"delay-per-exec"`
	MemoriaTotal         int    `json:"max-overall-mem"`
	TamanioMarco         int    `json:"mem-per-frame"`
	MinMemoriaProceso    int    `json:"min-mem-per-proc"`
	MaxMemoriaProceso    int    `json:"max-mem-per-proc"`

	NivelLog       string `json:"log-level"`
	ArchivoBacking string `json:"archivo-backing-store"`
	ArchivoVmstat  string `json:"archivo-vmstat"`
	ArchivoReporte string `json:"archivo-reporte"`
}

func esPotenciaDeDos(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AplicarDefaults completa los campos opcionales que el archivo no trae
func (c *Config) AplicarDefaults() {
	if c.NivelLog == "" {
		c.NivelLog = "info"
	}
	if c.ArchivoBacking == "" {
		c.ArchivoBacking = "emulador-backing-store.txt"
	}
	if c.ArchivoVmstat == "" {
		c.ArchivoVmstat = "emulador-vmstat.txt"
	}
	if c.ArchivoReporte == "" {
		c.ArchivoReporte = "emulador-reporte.txt"
	}
}

// Validar rechaza configuraciones que dejarían al emulador en un estado
// inconsistente antes de arrancar
func (c *Config) Validar() error {
	if c.NumCPU < 1 || c.NumCPU > 128 {
		return fmt.Errorf("num-cpu debe estar entre 1 y 128, vale %d", c.NumCPU)
	}
	if c.Planificador != "fcfs" && c.Planificador != "rr" {
		return fmt.Errorf("scheduler debe ser \"fcfs\" o \"rr\", vale %q", c.Planificador)
	}
	if c.QuantumCiclos < 1 {
		return fmt.Errorf("quantum-cycles debe ser al menos 1, vale %d", c.QuantumCiclos)
	}
	if c.FrecuenciaGeneracion < 1 {
		return fmt.Errorf("batch-process-freq debe ser al menos 1, vale %d", c.FrecuenciaGeneracion)
	}
	if c.MinInstrucciones < 1 {
		return fmt.Errorf("min-ins debe ser al menos 1, vale %d", c.MinInstrucciones)
	}
	if c.MaxInstrucciones < c.MinInstrucciones {
		return fmt.Errorf("max-ins (%d) no puede ser menor que min-ins (%d)", c.MaxInstrucciones, c.MinInstrucciones)
	}

	for _, campo := range []struct {
		nombre string
		valor  int
	}{
		{"max-overall-mem", c.MemoriaTotal},
		{"mem-per-frame", c.TamanioMarco},
		{"min-mem-per-proc", c.MinMemoriaProceso},
		{"max-mem-per-proc", c.MaxMemoriaProceso},
	} {
		if !esPotenciaDeDos(campo.valor) {
			return fmt.Errorf("%s debe ser potencia de dos, vale %d", campo.nombre, campo.valor)
		}
	}

	if c.MemoriaTotal%c.TamanioMarco != 0 || c.MemoriaTotal < c.TamanioMarco {
		return fmt.Errorf("max-overall-mem (%d) debe ser múltiplo de mem-per-frame (%d)", c.MemoriaTotal, c.TamanioMarco)
	}
	if c.MaxMemoriaProceso < c.MinMemoriaProceso {
		return fmt.Errorf("max-mem-per-proc (%d) no puede ser menor que min-mem-per-proc (%d)", c.MaxMemoriaProceso, c.MinMemoriaProceso)
	}
	return nil
}
