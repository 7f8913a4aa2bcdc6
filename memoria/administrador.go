package memoria

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

// NuevoAdministrador crea el administrador con la tabla de marcos vacía.
// rutaBackingLog y rutaVmstat pueden ser vacías para deshabilitar los archivos.
func NuevoAdministrador(tamanioTotal, tamanioMarco, minMemProc, maxMemProc int, rutaBackingLog, rutaVmstat string) *Administrador {
	totalMarcos := tamanioTotal / tamanioMarco

	a := &Administrador{
		tamanioTotal:   tamanioTotal,
		tamanioMarco:   tamanioMarco,
		totalMarcos:    totalMarcos,
		minMemProc:     minMemProc,
		maxMemProc:     maxMemProc,
		principal:      make([]byte, totalMarcos*tamanioMarco),
		etiquetas:      make([]string, totalMarcos),
		validos:        make([]bool, totalMarcos),
		backing:        make(map[string][]byte),
		procesos:       make(map[int]Proceso),
		metricas:       make(map[int]*MetricasProceso),
		rutaBackingLog: rutaBackingLog,
		rutaVmstat:     rutaVmstat,
	}

	a.inicializarArchivoBacking()

	utils.InfoLog.Info("Administrador de memoria inicializado",
		"memoria_total", tamanioTotal, "tamanio_marco", tamanioMarco, "marcos", totalMarcos)
	return a
}

func etiquetaPagina(pid, pagina int) string {
	return fmt.Sprintf("%d:%d", pid, pagina)
}

// partirEtiqueta descompone "pid:pagina"; ok es false para etiquetas vacías o rotas
func partirEtiqueta(etiqueta string) (pid int, pagina int, ok bool) {
	partes := strings.SplitN(etiqueta, ":", 2)
	if len(partes) != 2 {
		return 0, 0, false
	}
	pid, err1 := strconv.Atoi(partes[0])
	pagina, err2 := strconv.Atoi(partes[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return pid, pagina, true
}

// Asignar reserva el espacio lógico del proceso. La admisión es perezosa:
// solo se crean las páginas en el backing store, los marcos se resuelven
// recién en el camino de fallo de página.
func (a *Administrador) Asignar(p Proceso, bytesSolicitados int) {
	paginasRequeridas := (bytesSolicitados + a.tamanioMarco - 1) / a.tamanioMarco

	p.InicializarPaginas(paginasRequeridas)

	a.muBacking.Lock()
	for i := 0; i < paginasRequeridas; i++ {
		a.backing[etiquetaPagina(p.PID(), i)] = make([]byte, a.tamanioMarco)
	}
	a.muBacking.Unlock()

	a.muProcesos.Lock()
	a.procesos[p.PID()] = p
	a.muProcesos.Unlock()

	a.muMetricas.Lock()
	a.metricas[p.PID()] = &MetricasProceso{}
	a.muMetricas.Unlock()

	utils.InfoLog.Info("Memoria asignada a proceso",
		"pid", p.PID(), "bytes", bytesSolicitados, "paginas", paginasRequeridas)
}

// AsignarVariable reserva la próxima ranura alineada del segmento de tabla de
// símbolos [0, 64) y la inicializa en cero. Devuelve false con la tabla llena.
func (a *Administrador) AsignarVariable(p Proceso, nombre string) (string, bool) {
	if p.CantidadSimbolos() >= 32 {
		return "", false
	}

	desplazamiento := 2 * p.CantidadSimbolos()
	direccion := fmt.Sprintf("0x%X", desplazamiento)
	p.RegistrarSimbolo(nombre, direccion)

	if err := a.Escribir(p, direccion, 0); err != nil {
		utils.ErrorLog.Error("Error inicializando variable", "pid", p.PID(), "variable", nombre, "error", err)
		return "", false
	}

	utils.InfoLog.Info("Variable asignada", "pid", p.PID(), "variable", nombre, "direccion", direccion)
	return direccion, true
}

// parsearDireccion interpreta una dirección lógica hexadecimal no negativa
func parsearDireccion(direccion string) (int, error) {
	limpia := strings.TrimPrefix(strings.TrimPrefix(direccion, "0x"), "0X")
	if limpia == "" {
		return 0, fmt.Errorf("dirección vacía")
	}
	valor, err := strconv.ParseUint(limpia, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("dirección inválida %q: %v", direccion, err)
	}
	return int(valor), nil
}

// traducirByte resuelve la dirección de UN byte a (marco, offset), atendiendo
// el fallo de página si la página no está residente. No chequea límites: eso
// ya lo hizo el llamador sobre la dirección completa de la palabra.
func (a *Administrador) traducirByte(p Proceso, dir int) (int, int, error) {
	pagina := dir / a.tamanioMarco
	offset := dir % a.tamanioMarco

	for {
		if marco, residente := p.PaginaResidente(pagina); residente {
			return marco, offset, nil
		}
		if err := a.atenderFalloPagina(p, pagina); err != nil {
			return 0, 0, err
		}
		// Una expulsión concurrente pudo invalidar la página entre el fallo y
		// el uso del marco; el lazo vuelve a consultar la residencia.
	}
}

// validarAcceso aplica el chequeo de límites sobre la palabra completa y marca
// la violación sobre el proceso cuando corresponde
func (a *Administrador) validarAcceso(p Proceso, direccion string) (int, error) {
	dir, err := parsearDireccion(direccion)
	if err != nil {
		p.MarcarViolacion(direccion)
		return 0, fmt.Errorf("%w: %s", ErrViolacionMemoria, direccion)
	}
	if dir+1 >= p.MemoriaAsignada() {
		p.MarcarViolacion(direccion)
		return 0, fmt.Errorf("%w: %s", ErrViolacionMemoria, direccion)
	}
	return dir, nil
}

// Leer devuelve la palabra de 16 bits en la dirección lógica indicada
func (a *Administrador) Leer(p Proceso, direccion string) (uint16, error) {
	dir, err := a.validarAcceso(p, direccion)
	if err != nil {
		return 0, err
	}

	a.registrarAcceso(p.PID(), func(m *MetricasProceso) { m.Accesos++; m.LecturasMemoria++ })

	bajo, err := a.leerByte(p, dir)
	if err != nil {
		return 0, err
	}
	alto, err := a.leerByte(p, dir+1)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16([]byte{bajo, alto}), nil
}

// Escribir almacena la palabra de 16 bits en la dirección lógica indicada
func (a *Administrador) Escribir(p Proceso, direccion string, valor uint16) error {
	dir, err := a.validarAcceso(p, direccion)
	if err != nil {
		return err
	}

	a.registrarAcceso(p.PID(), func(m *MetricasProceso) { m.Accesos++; m.EscriturasMemoria++ })

	var palabra [2]byte
	binary.LittleEndian.PutUint16(palabra[:], valor)
	if err := a.escribirByte(p, dir, palabra[0]); err != nil {
		return err
	}
	return a.escribirByte(p, dir+1, palabra[1])
}

func (a *Administrador) leerByte(p Proceso, dir int) (byte, error) {
	marco, offset, err := a.traducirByte(p, dir)
	if err != nil {
		return 0, err
	}
	a.muMarcos.Lock()
	defer a.muMarcos.Unlock()
	return a.principal[marco*a.tamanioMarco+offset], nil
}

func (a *Administrador) escribirByte(p Proceso, dir int, valor byte) error {
	marco, offset, err := a.traducirByte(p, dir)
	if err != nil {
		return err
	}
	a.muMarcos.Lock()
	defer a.muMarcos.Unlock()
	a.principal[marco*a.tamanioMarco+offset] = valor
	return nil
}

// reservarMarcoLibre busca el primer marco libre en orden ascendente y lo
// reserva con la etiqueta destino para que otro fallo no lo tome en paralelo
func (a *Administrador) reservarMarcoLibre(etiqueta string) int {
	a.muMarcos.Lock()
	defer a.muMarcos.Unlock()
	for i := 0; i < a.totalMarcos; i++ {
		if !a.validos[i] && a.etiquetas[i] == "" {
			a.etiquetas[i] = etiqueta
			return i
		}
	}
	return -1
}

// victimaFIFO desencola el marco residente más antiguo
func (a *Administrador) victimaFIFO() int {
	a.muFIFO.Lock()
	defer a.muFIFO.Unlock()
	if len(a.colaFIFO) == 0 {
		return -1
	}
	victima := a.colaFIFO[0]
	a.colaFIFO = a.colaFIFO[1:]
	return victima
}

// atenderFalloPagina carga la página en un marco, expulsando a la víctima
// FIFO si no hay marcos libres
func (a *Administrador) atenderFalloPagina(p Proceso, pagina int) error {
	etiqueta := etiquetaPagina(p.PID(), pagina)

	a.registrarAcceso(p.PID(), func(m *MetricasProceso) { m.FallosDePagina++ })

	marco := a.reservarMarcoLibre(etiqueta)
	if marco == -1 {
		victima := a.victimaFIFO()
		if victima == -1 {
			utils.ErrorLog.Error("Fallo de página sin marcos libres ni expulsables", "pid", p.PID(), "pagina", pagina)
			p.MarcarViolacion("Out of Memory")
			return fmt.Errorf("%w: pid %d página %d", ErrSinMemoria, p.PID(), pagina)
		}
		a.expulsarPagina(victima)
		a.muMarcos.Lock()
		a.etiquetas[victima] = etiqueta
		a.muMarcos.Unlock()
		marco = victima
	}

	// Cargar el contenido desde el backing store; una página inexistente se
	// trata como llena de ceros
	a.muBacking.Lock()
	contenido, existe := a.backing[etiqueta]
	if existe {
		contenido = append([]byte(nil), contenido...)
	}
	a.muBacking.Unlock()

	a.muMarcos.Lock()
	base := marco * a.tamanioMarco
	if existe {
		copy(a.principal[base:base+a.tamanioMarco], contenido)
	} else {
		for i := base; i < base+a.tamanioMarco; i++ {
			a.principal[i] = 0
		}
	}
	a.muMarcos.Unlock()

	// El alta en la cola FIFO ocurre antes de que el marco sea visible como
	// válido para el próximo fallo
	a.muFIFO.Lock()
	a.colaFIFO = append(a.colaFIFO, marco)
	a.muFIFO.Unlock()

	a.muMarcos.Lock()
	a.validos[marco] = true
	a.muMarcos.Unlock()

	p.ActualizarPagina(pagina, marco)

	a.paginadasEntrantes.Add(1)
	a.registrarAcceso(p.PID(), func(m *MetricasProceso) { m.SubidasAMemoria++ })

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Página %d cargada en marco %d", p.PID(), pagina, marco))
	return nil
}

// expulsarPagina baja al backing store la página residente en el marco dado y
// deja el marco inválido pero sin liberar: conserva la etiqueta anterior para
// que otro fallo no lo tome, y el llamador le asigna la nueva
func (a *Administrador) expulsarPagina(marco int) {
	a.muMarcos.Lock()
	etiqueta := a.etiquetas[marco]
	a.muMarcos.Unlock()
	if etiqueta == "" {
		return
	}

	pid, pagina, ok := partirEtiqueta(etiqueta)

	var duenio Proceso
	if ok {
		a.muProcesos.Lock()
		duenio = a.procesos[pid]
		a.muProcesos.Unlock()
		if duenio != nil {
			duenio.InvalidarPagina(pagina)
		}
	}

	a.muMarcos.Lock()
	base := marco * a.tamanioMarco
	contenido := append([]byte(nil), a.principal[base:base+a.tamanioMarco]...)
	a.validos[marco] = false
	a.muMarcos.Unlock()

	a.muBacking.Lock()
	a.backing[etiqueta] = contenido
	a.muBacking.Unlock()

	a.registrarExpulsion(etiqueta, duenio, marco, contenido)
	a.paginadasSalientes.Add(1)
	if ok {
		a.registrarAcceso(pid, func(m *MetricasProceso) { m.BajadasABacking++ })
		utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Página %d movida al backing store", pid, pagina))
	}
}

// Liberar limpia marcos, cola FIFO, backing store y registro de propietario
// del proceso indicado. El purgado de la FIFO es atómico respecto de otros
// fallos de página.
func (a *Administrador) Liberar(pid int) {
	prefijo := fmt.Sprintf("%d:", pid)

	a.muFIFO.Lock()
	a.muMarcos.Lock()
	liberados := make(map[int]bool)
	for i := 0; i < a.totalMarcos; i++ {
		if strings.HasPrefix(a.etiquetas[i], prefijo) {
			base := i * a.tamanioMarco
			for j := base; j < base+a.tamanioMarco; j++ {
				a.principal[j] = 0
			}
			a.etiquetas[i] = ""
			a.validos[i] = false
			liberados[i] = true
		}
	}
	a.muMarcos.Unlock()

	if len(liberados) > 0 {
		depurada := a.colaFIFO[:0]
		for _, marco := range a.colaFIFO {
			if !liberados[marco] {
				depurada = append(depurada, marco)
			}
		}
		a.colaFIFO = depurada
	}
	a.muFIFO.Unlock()

	a.muBacking.Lock()
	for etiqueta := range a.backing {
		if strings.HasPrefix(etiqueta, prefijo) {
			delete(a.backing, etiqueta)
		}
	}
	a.muBacking.Unlock()

	a.muProcesos.Lock()
	delete(a.procesos, pid)
	a.muProcesos.Unlock()

	utils.InfoLog.Info("Memoria liberada completamente", "pid", pid, "marcos_liberados", len(liberados))
}

// TamanioAleatorioProceso elige una potencia de dos al azar dentro del rango
// configurado por proceso
func (a *Administrador) TamanioAleatorioProceso() int {
	var tamanios []int
	for t := a.minMemProc; t <= a.maxMemProc && t > 0; t *= 2 {
		tamanios = append(tamanios, t)
	}
	if len(tamanios) == 0 {
		return a.minMemProc
	}
	return tamanios[rand.Intn(len(tamanios))]
}

func (a *Administrador) registrarAcceso(pid int, actualizar func(*MetricasProceso)) {
	a.muMetricas.Lock()
	defer a.muMetricas.Unlock()
	m, existe := a.metricas[pid]
	if !existe {
		m = &MetricasProceso{}
		a.metricas[pid] = m
	}
	actualizar(m)
}

// Metricas devuelve una copia de las métricas del proceso
func (a *Administrador) Metricas(pid int) MetricasProceso {
	a.muMetricas.Lock()
	defer a.muMetricas.Unlock()
	if m, existe := a.metricas[pid]; existe {
		return *m
	}
	return MetricasProceso{}
}

// PaginadasEntrantes devuelve el total de páginas subidas a memoria
func (a *Administrador) PaginadasEntrantes() int64 {
	return a.paginadasEntrantes.Load()
}

// PaginadasSalientes devuelve el total de páginas bajadas al backing store
func (a *Administrador) PaginadasSalientes() int64 {
	return a.paginadasSalientes.Load()
}

// TotalMarcos devuelve la cantidad de marcos físicos
func (a *Administrador) TotalMarcos() int { return a.totalMarcos }

// TamanioMarco devuelve el tamaño de marco en bytes
func (a *Administrador) TamanioMarco() int { return a.tamanioMarco }

// TamanioTotal devuelve el total de memoria física en bytes
func (a *Administrador) TamanioTotal() int { return a.tamanioTotal }

// MarcosUsados cuenta los marcos actualmente válidos
func (a *Administrador) MarcosUsados() int {
	a.muMarcos.Lock()
	defer a.muMarcos.Unlock()
	usados := 0
	for _, valido := range a.validos {
		if valido {
			usados++
		}
	}
	return usados
}

// EtiquetaDeMarco devuelve la página residente en un marco (copia bajo lock)
func (a *Administrador) EtiquetaDeMarco(marco int) string {
	a.muMarcos.Lock()
	defer a.muMarcos.Unlock()
	if marco < 0 || marco >= a.totalMarcos {
		return ""
	}
	return a.etiquetas[marco]
}
