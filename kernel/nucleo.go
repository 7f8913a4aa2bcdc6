package kernel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/proceso"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

// Nucleo es un contexto de ejecución serial: sostiene a lo sumo un proceso y
// lo ejecuta en su propio hilo hasta agotar el quantum, dormirse o terminar.
type Nucleo struct {
	id           int
	delayPorExec uint64
	reloj        *utils.Reloj
	planificador *Planificador

	ocupado atomic.Bool
	mu      sync.Mutex
	actual  *proceso.Proceso
	wg      sync.WaitGroup
}

func nuevoNucleo(id int, delayPorExec uint64, reloj *utils.Reloj, planificador *Planificador) *Nucleo {
	return &Nucleo{
		id:           id,
		delayPorExec: delayPorExec,
		reloj:        reloj,
		planificador: planificador,
	}
}

// ID devuelve el identificador del núcleo
func (n *Nucleo) ID() int { return n.id }

// Ocupado indica si el núcleo tiene un proceso asignado
func (n *Nucleo) Ocupado() bool {
	return n.ocupado.Load()
}

// ProcesoActual devuelve el proceso en ejecución, nil si el núcleo está libre
func (n *Nucleo) ProcesoActual() *proceso.Proceso {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.actual
}

// Detener pide el corte cooperativo: el hilo de trabajo lo observa en el
// próximo límite de instrucción
func (n *Nucleo) Detener() {
	n.ocupado.Store(false)
}

// IntentarAsignar entrega un proceso al núcleo. Devuelve false si está
// ocupado; si acepta, la ejecución arranca en el hilo propio del núcleo.
func (n *Nucleo) IntentarAsignar(p *proceso.Proceso, quantum uint64) bool {
	if !n.ocupado.CompareAndSwap(false, true) {
		return false
	}
	// El hilo de la asignación anterior puede estar cerrando todavía
	n.wg.Wait()

	n.mu.Lock()
	n.actual = p
	n.mu.Unlock()
	p.DefinirUltimoNucleo(n.id)

	n.wg.Add(1)
	go n.bucleTrabajo(p, quantum)
	return true
}

func (n *Nucleo) bucleTrabajo(p *proceso.Proceso, quantum uint64) {
	defer n.wg.Done()

	var ejecutadas uint64
	for n.ocupado.Load() && !p.Finalizado() && ejecutadas < quantum {
		if _, dormido := p.DurmiendoHasta(); dormido {
			n.planificador.Reencolar(p)
			break
		}

		resultado, err := p.Paso(n.id)
		if err != nil {
			// El proceso ya quedó marcado terminal por la violación
			break
		}
		if resultado == proceso.Terminado {
			break
		}

		n.reloj.Avanzar(1)
		n.planificador.acumularUtilizacion(n.id, 1)
		ejecutadas++

		if n.delayPorExec == 0 {
			time.Sleep(time.Millisecond)
		} else {
			objetivo := n.reloj.Actual() + n.delayPorExec
			for n.reloj.Actual() < objetivo {
				runtime.Gosched()
			}
		}
	}

	if p.Finalizado() {
		n.planificador.AgregarFinalizado(p)
	} else if ejecutadas >= quantum {
		n.planificador.Reencolar(p)
	}

	n.mu.Lock()
	n.actual = nil
	n.mu.Unlock()
	n.ocupado.Store(false)
	n.planificador.liberarSlot()
}
