package utils

// Semaforo es un semáforo contador implementado sobre un canal con buffer
type Semaforo struct {
	c chan struct{}
}

// NewSemaforo crea un semáforo con la capacidad indicada
func NewSemaforo(capacidad int) *Semaforo {
	if capacidad <= 0 {
		capacidad = 1
	}
	return &Semaforo{
		c: make(chan struct{}, capacidad),
	}
}

// Wait (P) adquiere un permiso, bloqueando si no hay disponibles
func (s *Semaforo) Wait() {
	s.c <- struct{}{}
}

// Signal (V) devuelve un permiso. Los Signal de más no acumulan capacidad.
func (s *Semaforo) Signal() {
	select {
	case <-s.c:
	default:
	}
}

// TryWait intenta adquirir un permiso sin bloquear
func (s *Semaforo) TryWait() bool {
	select {
	case s.c <- struct{}{}:
		return true
	default:
		return false
	}
}
