package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/kernel"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/memoria"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/proceso"
	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

const cadenciaReloj = time.Microsecond

// Consola es el shell interactivo del emulador: un adaptador de texto sobre
// el planificador y el administrador de memoria
type Consola struct {
	cfg    *Config
	salida io.Writer

	reloj        *utils.Reloj
	mem          *memoria.Administrador
	planificador *kernel.Planificador
	inicializada bool
}

// NuevaConsola crea la consola sin inicializar los componentes del núcleo
func NuevaConsola(cfg *Config, salida io.Writer) *Consola {
	return &Consola{cfg: cfg, salida: salida}
}

// Ejecutar corre el bucle de lectura de comandos hasta exit o EOF
func (c *Consola) Ejecutar(entrada io.Reader) {
	c.imprimirEncabezado()

	scanner := bufio.NewScanner(entrada)
	for {
		fmt.Fprint(c.salida, "emulador> ")
		if !scanner.Scan() {
			break
		}
		linea := strings.TrimSpace(scanner.Text())
		if linea == "exit" {
			break
		}
		c.atenderComando(linea)
	}

	fmt.Fprintln(c.salida, "Saliendo...")
	c.Apagar()
}

// Apagar corta la generación, espera los procesos activos y frena todo
func (c *Consola) Apagar() {
	if !c.inicializada {
		return
	}
	c.planificador.DetenerGeneracion()
	fmt.Fprintln(c.salida, "Esperando que terminen todos los procesos...")
	c.planificador.EsperarTodos()
	c.planificador.Detener()
	c.reloj.Detener()
	c.inicializada = false
}

func (c *Consola) imprimirEncabezado() {
	fmt.Fprintln(c.salida, "Emulador de planificación y memoria virtual")
	fmt.Fprintf(c.salida, "Hora de inicio: %s\n", time.Now().Format("01/02/2006, 03:04:05 PM"))
	fmt.Fprintln(c.salida, "Escriba 'help' para ver los comandos disponibles")
}

func (c *Consola) atenderComando(linea string) {
	conocido := strings.HasPrefix(linea, "screen -s ") || strings.HasPrefix(linea, "screen -c ") ||
		strings.HasPrefix(linea, "screen -r ") || linea == "screen -ls" ||
		linea == "scheduler-start" || linea == "scheduler-stop" ||
		linea == "report-util" || linea == "process-smi" || linea == "vmstat"

	switch {
	case linea == "":
	case linea == "help":
		c.imprimirAyuda()
	case linea == "clear":
		fmt.Fprint(c.salida, "\033[H\033[2J")
		c.imprimirEncabezado()
	case linea == "initialize":
		c.inicializar()
	case !c.inicializada && conocido:
		fmt.Fprintln(c.salida, "Error: el emulador no está inicializado. Ejecute 'initialize' primero.")
	case strings.HasPrefix(linea, "screen -s "):
		c.crearProcesoAleatorio(strings.TrimSpace(linea[len("screen -s "):]))
	case strings.HasPrefix(linea, "screen -c "):
		c.crearProcesoScript(strings.TrimSpace(linea[len("screen -c "):]))
	case strings.HasPrefix(linea, "screen -r "):
		c.adjuntarProceso(strings.TrimSpace(linea[len("screen -r "):]))
	case linea == "screen -ls":
		fmt.Fprint(c.salida, textoListado(c.planificador))
	case linea == "scheduler-start":
		c.planificador.IniciarGeneracion()
		fmt.Fprintln(c.salida, "Generación de procesos iniciada.")
	case linea == "scheduler-stop":
		c.planificador.DetenerGeneracion()
		fmt.Fprintln(c.salida, "Generación de procesos detenida.")
	case linea == "report-util":
		c.generarReporte()
	case linea == "process-smi":
		fmt.Fprint(c.salida, textoProcessSmi(c.planificador, c.mem))
	case linea == "vmstat":
		fmt.Fprint(c.salida, textoVmstat(c.planificador, c.mem, c.reloj))
	default:
		fmt.Fprintf(c.salida, "[%s] Comando desconocido: %s\n", time.Now().Format("01/02/2006, 03:04:05 PM"), linea)
	}
}

func (c *Consola) imprimirAyuda() {
	fmt.Fprintln(c.salida, "\nComandos disponibles:")
	fmt.Fprintln(c.salida, "- initialize: inicializa el emulador (debe ejecutarse primero)")
	fmt.Fprintln(c.salida, "- process-smi: resumen de utilización de CPU y memoria")
	fmt.Fprintln(c.salida, "- vmstat: estadísticas detalladas de memoria virtual")
	fmt.Fprintln(c.salida, "- screen -ls: procesos activos y finalizados")
	fmt.Fprintln(c.salida, "- screen -s <nombre> <tamaño>: crea un proceso con instrucciones aleatorias")
	fmt.Fprintln(c.salida, "- screen -c <nombre> <tamaño> \"<instrucciones>\": crea un proceso con script propio")
	fmt.Fprintln(c.salida, "- screen -r <nombre>: muestra la pantalla de un proceso existente")
	fmt.Fprintln(c.salida, "- scheduler-start: arranca la generación de procesos por lotes")
	fmt.Fprintln(c.salida, "- scheduler-stop: detiene la generación de procesos por lotes")
	fmt.Fprintln(c.salida, "- report-util: vuelca el reporte de utilización a un archivo")
	fmt.Fprintln(c.salida, "- clear: limpia la pantalla")
	fmt.Fprintln(c.salida, "- exit: termina el emulador")
}

func (c *Consola) inicializar() {
	if c.inicializada {
		fmt.Fprintln(c.salida, "El emulador ya está inicializado.")
		return
	}

	c.reloj = utils.NuevoReloj(cadenciaReloj)
	c.reloj.Iniciar()

	c.mem = memoria.NuevoAdministrador(c.cfg.MemoriaTotal, c.cfg.TamanioMarco,
		c.cfg.MinMemoriaProceso, c.cfg.MaxMemoriaProceso,
		c.cfg.ArchivoBacking, c.cfg.ArchivoVmstat)

	c.planificador = kernel.NuevoPlanificador(c.cfg.NumCPU, c.cfg.Planificador,
		c.cfg.QuantumCiclos, c.cfg.FrecuenciaGeneracion,
		c.cfg.MinInstrucciones, c.cfg.MaxInstrucciones,
		c.cfg.DelayPorExec, c.mem, c.reloj)
	c.planificador.Iniciar()

	c.inicializada = true
	fmt.Fprintln(c.salida, "Emulador inicializado con la configuración cargada:")
	fmt.Fprintf(c.salida, "  num-cpu: %d\n", c.cfg.NumCPU)
	fmt.Fprintf(c.salida, "  scheduler: %s\n", c.cfg.Planificador)
	fmt.Fprintf(c.salida, "  quantum-cycles: %d\n", c.cfg.QuantumCiclos)
	fmt.Fprintf(c.salida, "  batch-process-freq: %d\n", c.cfg.FrecuenciaGeneracion)
	fmt.Fprintf(c.salida, "  min-ins: %d\n", c.cfg.MinInstrucciones)
	fmt.Fprintf(c.salida, "  max-ins: %d\n", c.cfg.MaxInstrucciones)
	fmt.Fprintf(c.salida, "  delay-per-exec: %d\n", c.cfg.DelayPorExec)
	fmt.Fprintf(c.salida, "  max-overall-mem: %d\n", c.cfg.MemoriaTotal)
	fmt.Fprintf(c.salida, "  mem-per-frame: %d\n", c.cfg.TamanioMarco)
	fmt.Fprintf(c.salida, "  min-mem-per-proc: %d\n", c.cfg.MinMemoriaProceso)
	fmt.Fprintf(c.salida, "  max-mem-per-proc: %d\n", c.cfg.MaxMemoriaProceso)
}

func tamanioValido(tamanio int) bool {
	return esPotenciaDeDos(tamanio) && tamanio >= 64 && tamanio <= 65536
}

func (c *Consola) crearProcesoAleatorio(args string) {
	campos := strings.Fields(args)
	if len(campos) != 2 {
		fmt.Fprintln(c.salida, "Uso: screen -s <nombre> <tamaño>")
		return
	}
	nombre := campos[0]
	tamanio, err := strconv.Atoi(campos[1])
	if err != nil || !tamanioValido(tamanio) {
		fmt.Fprintln(c.salida, "Tamaño inválido: debe ser potencia de 2 entre 64 y 65536.")
		return
	}

	p := proceso.NuevoProceso(c.planificador.ProximoPID(), nombre, tamanio, c.mem, c.reloj)
	p.CargarPrograma(proceso.GenerarPrograma(c.cfg.MinInstrucciones, c.cfg.MaxInstrucciones, tamanio))
	c.mem.Asignar(p, tamanio)
	c.planificador.Admitir(p)
	fmt.Fprintf(c.salida, "Proceso '%s' creado y admitido.\n", nombre)
}

func (c *Consola) crearProcesoScript(args string) {
	campos := strings.SplitN(args, " ", 3)
	if len(campos) != 3 {
		fmt.Fprintln(c.salida, "Uso: screen -c <nombre> <tamaño> \"<instrucciones>\"")
		return
	}
	nombre := campos[0]
	tamanio, err := strconv.Atoi(campos[1])
	if err != nil || !tamanioValido(tamanio) {
		fmt.Fprintln(c.salida, "Tamaño inválido: debe ser potencia de 2 entre 64 y 65536.")
		return
	}

	script := strings.TrimSpace(campos[2])
	script = strings.TrimPrefix(script, "\"")
	script = strings.TrimSuffix(script, "\"")
	if script == "" {
		fmt.Fprintln(c.salida, "Uso: screen -c <nombre> <tamaño> \"<instrucciones>\"")
		return
	}

	programa, descartadas, err := proceso.ParsearScript(script)
	if err != nil {
		fmt.Fprintf(c.salida, "Script inválido: %v\n", err)
		return
	}

	p := proceso.NuevoProceso(c.planificador.ProximoPID(), nombre, tamanio, c.mem, c.reloj)
	p.CargarPrograma(programa)
	for _, sentencia := range descartadas {
		p.RegistrarLog(fmt.Sprintf("[Error] Instrucción descartada al cargar: %s", sentencia))
	}
	c.mem.Asignar(p, tamanio)
	c.planificador.Admitir(p)
	fmt.Fprintf(c.salida, "Proceso '%s' creado y admitido.\n", nombre)
}

func (c *Consola) adjuntarProceso(nombre string) {
	if nombre == "" {
		fmt.Fprintln(c.salida, "Uso: screen -r <nombre>")
		return
	}

	p := c.planificador.BuscarProcesoPorNombre(nombre)
	if p == nil {
		fmt.Fprintf(c.salida, "Proceso '%s' no encontrado.\n", nombre)
		return
	}

	if direccion, momento, hubo := p.Violacion(); hubo {
		fmt.Fprintf(c.salida, "El proceso '%s' fue terminado por una violación de acceso a memoria ocurrida a las %s. Dirección inválida: %s.\n",
			nombre, momento.Format("15:04:05"), direccion)
		return
	}
	if p.EstadoActual() == proceso.FinalizadoNormal {
		fmt.Fprintf(c.salida, "El proceso '%s' ya terminó su ejecución.\n", nombre)
	}
	fmt.Fprint(c.salida, p.Smi())
}

func (c *Consola) generarReporte() {
	if err := GenerarReporte(c.cfg.ArchivoReporte, c.planificador); err != nil {
		fmt.Fprintf(c.salida, "Error: no se pudo escribir %s: %v\n", c.cfg.ArchivoReporte, err)
		return
	}
	fmt.Fprintf(c.salida, "Reporte escrito en %s\n", c.cfg.ArchivoReporte)
}
