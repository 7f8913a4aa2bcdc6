package proceso

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/memoria"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

// Estado es el estado de ciclo de vida de un proceso. Durmiendo vuelve a
// Ejecutando al despertar; los estados terminales no se abandonan.
type Estado int

const (
	Ejecutando Estado = iota
	Durmiendo
	FinalizadoNormal
	TerminadoViolacion
)

func (e Estado) String() string {
	switch e {
	case Ejecutando:
		return "EJECUTANDO"
	case Durmiendo:
		return "DURMIENDO"
	case FinalizadoNormal:
		return "FINALIZADO"
	case TerminadoViolacion:
		return "VIOLACION"
	default:
		return "DESCONOCIDO"
	}
}

// RegistroLog es una línea emitida por PRINT o por los caminos de error
type RegistroLog struct {
	Momento time.Time
	Mensaje string
}

type marcoBucle struct {
	inicio    int
	restantes uint16
}

// Proceso es el PCB del emulador: programa, tabla de símbolos, tabla de
// páginas, pila de bucles, logs y estado terminal. La tabla de páginas y la
// de símbolos se protegen con el mutex propio porque una expulsión corriendo
// en otro núcleo puede invalidar páginas de este proceso.
type Proceso struct {
	pid             int
	nombre          string
	memoriaAsignada int

	programa   []Instruccion
	pc         int
	pilaBucles []marcoBucle

	mem   *memoria.Administrador
	reloj *utils.Reloj

	mu           sync.Mutex
	estado       Estado
	tablaPaginas map[int]int
	validas      map[int]bool
	simbolos     map[string]string
	ordenSimbolo []string
	logs         []RegistroLog

	tickDespertar      uint64
	despertarPendiente bool

	ultimoNucleo  int
	horaFin       time.Time
	dirViolacion  string
	horaViolacion time.Time
}

// NuevoProceso crea un proceso con su espacio lógico dimensionado pero sin
// programa cargado
func NuevoProceso(pid int, nombre string, tamanioMemoria int, mem *memoria.Administrador, reloj *utils.Reloj) *Proceso {
	return &Proceso{
		pid:             pid,
		nombre:          nombre,
		memoriaAsignada: tamanioMemoria,
		mem:             mem,
		reloj:           reloj,
		estado:          Ejecutando,
		tablaPaginas:    make(map[int]int),
		validas:         make(map[int]bool),
		simbolos:        make(map[string]string),
		ultimoNucleo:    -1,
	}
}

// CargarPrograma fija la secuencia de instrucciones; el programa es inmutable
// después de esto
func (p *Proceso) CargarPrograma(programa []Instruccion) {
	p.programa = programa
}

// PID devuelve el identificador único del proceso
func (p *Proceso) PID() int { return p.pid }

// Nombre devuelve el nombre visible del proceso
func (p *Proceso) Nombre() string { return p.nombre }

// MemoriaAsignada devuelve el tamaño del espacio lógico en bytes
func (p *Proceso) MemoriaAsignada() int { return p.memoriaAsignada }

// InicializarPaginas deja todas las páginas del proceso como no residentes
func (p *Proceso) InicializarPaginas(cantidad int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < cantidad; i++ {
		p.tablaPaginas[i] = -1
		p.validas[i] = false
	}
}

// PaginaResidente devuelve el marco de una página si está en memoria
func (p *Proceso) PaginaResidente(pagina int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.validas[pagina] {
		return 0, false
	}
	return p.tablaPaginas[pagina], true
}

// ActualizarPagina registra el marco de una página y la marca residente
func (p *Proceso) ActualizarPagina(pagina int, marco int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tablaPaginas[pagina] = marco
	p.validas[pagina] = true
}

// InvalidarPagina marca una página como no residente tras una expulsión
func (p *Proceso) InvalidarPagina(pagina int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tablaPaginas[pagina] = -1
	p.validas[pagina] = false
}

// CantidadSimbolos devuelve el tamaño actual de la tabla de símbolos
func (p *Proceso) CantidadSimbolos() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.simbolos)
}

// RegistrarSimbolo asocia una variable a su dirección lógica
func (p *Proceso) RegistrarSimbolo(nombre string, direccion string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, existe := p.simbolos[nombre]; !existe {
		p.ordenSimbolo = append(p.ordenSimbolo, nombre)
	}
	p.simbolos[nombre] = direccion
}

// CopiaTablaSimbolos devuelve una copia de la tabla de símbolos
func (p *Proceso) CopiaTablaSimbolos() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	copia := make(map[string]string, len(p.simbolos))
	for nombre, direccion := range p.simbolos {
		copia[nombre] = direccion
	}
	return copia
}

// DireccionSimbolo devuelve la dirección lógica de una variable si existe
func (p *Proceso) DireccionSimbolo(nombre string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	direccion, existe := p.simbolos[nombre]
	return direccion, existe
}

// MarcarViolacion termina el proceso registrando la dirección ofensora y el
// momento de la falla
func (p *Proceso) MarcarViolacion(direccion string) {
	p.mu.Lock()
	if p.estado == FinalizadoNormal || p.estado == TerminadoViolacion {
		p.mu.Unlock()
		return
	}
	p.estado = TerminadoViolacion
	p.dirViolacion = direccion
	p.horaViolacion = time.Now()
	p.logs = append(p.logs, RegistroLog{
		Momento: time.Now(),
		Mensaje: fmt.Sprintf("[Error] Violación de acceso a memoria en la dirección %s", direccion),
	})
	p.mu.Unlock()

	utils.ErrorLog.Error(fmt.Sprintf("## PID: %d - Terminado por violación de memoria - Dirección: %s", p.pid, direccion))
}

// RegistrarLog agrega una línea a la bitácora del proceso
func (p *Proceso) RegistrarLog(mensaje string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = append(p.logs, RegistroLog{Momento: time.Now(), Mensaje: mensaje})
}

// CopiaLogs devuelve una copia ordenada de la bitácora
func (p *Proceso) CopiaLogs() []RegistroLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RegistroLog(nil), p.logs...)
}

// EstadoActual devuelve el estado vigente
func (p *Proceso) EstadoActual() Estado {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.estado
}

// Finalizado indica si el proceso alcanzó un estado terminal
func (p *Proceso) Finalizado() bool {
	estado := p.EstadoActual()
	return estado == FinalizadoNormal || estado == TerminadoViolacion
}

// DurmiendoHasta devuelve el tick de despertar si el proceso está dormido
func (p *Proceso) DurmiendoHasta() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.estado != Durmiendo {
		return 0, false
	}
	return p.tickDespertar, true
}

// Despertar saca al proceso del estado dormido. El pc quedó apuntando a la
// instrucción SLEEP, que en la próxima ejecución cae de largo.
func (p *Proceso) Despertar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.estado != Durmiendo {
		return
	}
	p.estado = Ejecutando
	p.tickDespertar = 0
	p.despertarPendiente = true
}

// PC devuelve el índice de la instrucción actual
func (p *Proceso) PC() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pc
}

// TotalInstrucciones devuelve la longitud del programa
func (p *Proceso) TotalInstrucciones() int {
	return len(p.programa)
}

// DefinirUltimoNucleo registra el último núcleo que ejecutó al proceso
func (p *Proceso) DefinirUltimoNucleo(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ultimoNucleo = id
}

// UltimoNucleo devuelve el último núcleo asignado, -1 si nunca ejecutó
func (p *Proceso) UltimoNucleo() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ultimoNucleo
}

// DefinirHoraFin estampa el momento de finalización
func (p *Proceso) DefinirHoraFin(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.horaFin = t
}

// HoraFin devuelve el momento de finalización, cero si sigue activo
func (p *Proceso) HoraFin() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.horaFin
}

// Violacion devuelve la dirección y hora de la violación si el proceso
// terminó por acceso inválido
func (p *Proceso) Violacion() (direccion string, momento time.Time, hubo bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.estado != TerminadoViolacion {
		return "", time.Time{}, false
	}
	return p.dirViolacion, p.horaViolacion, true
}

// Smi arma el reporte legible del proceso: identidad, bitácora, estado e
// índice de instrucción
func (p *Proceso) Smi() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Nombre del proceso: %s\n", p.nombre)
	fmt.Fprintf(&b, "ID: %d\n", p.pid)

	b.WriteString("Logs:\n")
	if len(p.logs) == 0 {
		b.WriteString("  (Sin logs todavía)\n")
	} else {
		for _, registro := range p.logs {
			fmt.Fprintf(&b, "  (%s) %s\n", registro.Momento.Format("01/02/2006 03:04:05PM"), registro.Mensaje)
		}
	}

	switch p.estado {
	case FinalizadoNormal:
		b.WriteString("Finalizado!\n")
	case TerminadoViolacion:
		fmt.Fprintf(&b, "Estado: Terminado por violación de memoria (dirección %s)\n", p.dirViolacion)
	case Durmiendo:
		fmt.Fprintf(&b, "Estado: Durmiendo (hasta el tick %d)\n", p.tickDespertar)
	default:
		b.WriteString("Estado: Ejecutando\n")
	}

	fmt.Fprintf(&b, "Instrucción actual: %d\n", p.pc)
	fmt.Fprintf(&b, "Líneas de código: %d\n", len(p.programa))
	return b.String()
}
