package utils

import (
	"testing"
	"time"
)

func TestColaOrdenFIFO(t *testing.T) {
	c := NuevaCola[int]()
	for i := 1; i <= 3; i++ {
		c.Meter(i)
	}
	if c.Tamanio() != 3 {
		t.Fatalf("La cola debía tener 3 elementos, tiene %d", c.Tamanio())
	}
	for i := 1; i <= 3; i++ {
		if valor := c.Sacar(); valor != i {
			t.Errorf("Se esperaba sacar %d, salió %d", i, valor)
		}
	}
	if !c.Vacia() {
		t.Error("La cola debía quedar vacía")
	}
}

func TestColaIntentarSacarVacia(t *testing.T) {
	c := NuevaCola[string]()
	if _, hay := c.IntentarSacar(); hay {
		t.Error("IntentarSacar sobre una cola vacía no debía devolver elemento")
	}
	c.Meter("unico")
	valor, hay := c.IntentarSacar()
	if !hay || valor != "unico" {
		t.Errorf("Se esperaba sacar \"unico\", salió %q (hay %v)", valor, hay)
	}
}

func TestColaSacarBloqueaHastaMeter(t *testing.T) {
	c := NuevaCola[int]()
	listo := make(chan int)

	go func() {
		listo <- c.Sacar()
	}()

	time.Sleep(10 * time.Millisecond)
	c.Meter(42)

	select {
	case valor := <-listo:
		if valor != 42 {
			t.Errorf("Se esperaba 42, salió %d", valor)
		}
	case <-time.After(time.Second):
		t.Fatal("Sacar no se destrabó tras el Meter")
	}
}
