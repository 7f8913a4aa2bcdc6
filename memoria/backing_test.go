package memoria

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogDeExpulsiones(t *testing.T) {
	dir := t.TempDir()
	rutaLog := filepath.Join(dir, "backing.txt")

	adm := NuevoAdministrador(64, 64, 64, 256, rutaLog, "")
	p := nuevoProcesoPrueba(1, 128)
	adm.Asignar(p, 128)
	adm.AsignarVariable(p, "x")

	// Un solo marco: el acceso a la página 1 expulsa a la página 0
	if err := adm.Escribir(p, "0x0", 77); err != nil {
		t.Fatalf("Error escribiendo página 0: %v", err)
	}
	if err := adm.Escribir(p, "0x40", 88); err != nil {
		t.Fatalf("Error escribiendo página 1: %v", err)
	}

	contenido, err := os.ReadFile(rutaLog)
	if err != nil {
		t.Fatalf("No se pudo leer el log del backing store: %v", err)
	}
	texto := string(contenido)

	for _, fragmento := range []string{
		"SNAPSHOT DE BACKING STORE",
		"Página expulsada    : 1:0",
		"Expulsada del marco : 0",
		"Tabla de símbolos (página 0):",
		"| x        |",
	} {
		if !strings.Contains(texto, fragmento) {
			t.Errorf("El log debía contener %q", fragmento)
		}
	}
}

func TestInstantaneaVmstat(t *testing.T) {
	dir := t.TempDir()
	rutaVmstat := filepath.Join(dir, "vmstat.txt")

	adm := NuevoAdministrador(128, 64, 64, 256, "", rutaVmstat)
	p := nuevoProcesoPrueba(1, 64)
	adm.Asignar(p, 64)
	if err := adm.Escribir(p, "0x0", 1); err != nil {
		t.Fatalf("Error escribiendo: %v", err)
	}

	adm.Instantanea()

	contenido, err := os.ReadFile(rutaVmstat)
	if err != nil {
		t.Fatalf("No se pudo leer el archivo de vmstat: %v", err)
	}
	texto := string(contenido)
	if !strings.Contains(texto, "Frames: 2") {
		t.Errorf("El vmstat debía reportar los marcos totales, tiene:\n%s", texto)
	}
	if !strings.Contains(texto, "Paged In: 1") {
		t.Errorf("El vmstat debía reportar una página subida, tiene:\n%s", texto)
	}
}
