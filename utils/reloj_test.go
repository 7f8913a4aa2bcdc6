package utils

import (
	"testing"
	"time"
)

func TestRelojManual(t *testing.T) {
	r := NuevoReloj(0)
	if r.Actual() != 0 {
		t.Fatalf("El reloj debía arrancar en 0, vale %d", r.Actual())
	}
	r.Avanzar(5)
	r.Avanzar(2)
	if r.Actual() != 7 {
		t.Errorf("El reloj debía valer 7, vale %d", r.Actual())
	}

	// Con cadencia 0 el hilo de ticks no arranca
	r.Iniciar()
	time.Sleep(10 * time.Millisecond)
	if r.Actual() != 7 {
		t.Errorf("Sin cadencia el reloj no debía avanzar solo, vale %d", r.Actual())
	}
}

func TestRelojConCadencia(t *testing.T) {
	r := NuevoReloj(time.Microsecond)
	r.Iniciar()

	time.Sleep(20 * time.Millisecond)
	if r.Actual() == 0 {
		t.Error("El hilo de ticks debía avanzar el contador")
	}

	r.Detener()
	valor := r.Actual()
	time.Sleep(20 * time.Millisecond)
	if r.Actual() != valor {
		t.Errorf("Tras detener el reloj no debía avanzar: %d contra %d", valor, r.Actual())
	}
}
