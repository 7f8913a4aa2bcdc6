package proceso

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sisoputnfrba/emulador-2025-2c-LosCuervosXeneizes/utils"
)

// Resultado es el veredicto de un paso de ejecución
type Resultado int

const (
	// Avanzo indica que se ejecutó una instrucción y el proceso sigue listo
	Avanzo Resultado = iota
	// Suspendido indica que el proceso quedó dormido y debe salir del núcleo
	Suspendido
	// Terminado indica que el proceso alcanzó un estado terminal
	Terminado
)

// Paso ejecuta a lo sumo una instrucción lógica. Las violaciones de memoria
// levantadas por READ/WRITE salen como error con el proceso ya marcado
// terminal; el núcleo decide el destino del proceso según el Resultado.
func (p *Proceso) Paso(nucleoID int) (Resultado, error) {
	p.mu.Lock()
	switch p.estado {
	case FinalizadoNormal, TerminadoViolacion:
		p.mu.Unlock()
		return Terminado, nil
	case Durmiendo:
		if p.reloj.Actual() < p.tickDespertar {
			p.mu.Unlock()
			return Suspendido, nil
		}
		p.estado = Ejecutando
		p.tickDespertar = 0
		p.despertarPendiente = true
	}

	if p.pc >= len(p.programa) {
		p.estado = FinalizadoNormal
		p.mu.Unlock()
		return Terminado, nil
	}

	instruccion := p.programa[p.pc]
	pcAntes := p.pc
	p.mu.Unlock()

	if err := p.ejecutar(instruccion, nucleoID); err != nil {
		return Terminado, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.estado == TerminadoViolacion {
		return Terminado, nil
	}
	if p.estado != Durmiendo && p.pc == pcAntes {
		p.pc++
	}
	if p.pc >= len(p.programa) && p.estado != Durmiendo {
		p.estado = FinalizadoNormal
		return Terminado, nil
	}
	if p.estado == Durmiendo {
		return Suspendido, nil
	}
	return Avanzo, nil
}

func (p *Proceso) ejecutar(ins Instruccion, nucleoID int) error {
	switch ins.Codigo {
	case OpDeclare:
		return p.ejecutarDeclare(ins.Args)
	case OpAdd:
		return p.ejecutarAritmetica(ins.Args, 1)
	case OpSub:
		return p.ejecutarAritmetica(ins.Args, -1)
	case OpPrint:
		return p.ejecutarPrint(ins.Args, nucleoID)
	case OpSleep:
		return p.ejecutarSleep(ins.Args)
	case OpFor:
		return p.ejecutarFor(ins.Args)
	case OpEnd:
		p.ejecutarEnd()
		return nil
	case OpRead:
		return p.ejecutarRead(ins.Args)
	case OpWrite:
		return p.ejecutarWrite(ins.Args)
	default:
		p.RegistrarLog(fmt.Sprintf("[Error] Opcode desconocido: %s", ins.Codigo))
		return nil
	}
}

// esLiteral distingue literales de identificadores por el primer carácter
func esLiteral(token string) bool {
	if token == "" {
		return false
	}
	if token[0] >= '0' && token[0] <= '9' {
		return true
	}
	return token[0] == '-' && len(token) > 1
}

func clamp(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

// valor resuelve un operando: los literales decimales o hexadecimales usan su
// valor saturado, los identificadores se leen de memoria vía la tabla de
// símbolos y los desconocidos valen 0
func (p *Proceso) valor(token string) (uint16, error) {
	if esLiteral(token) {
		base := 10
		sinSigno := strings.TrimPrefix(token, "-")
		if strings.HasPrefix(sinSigno, "0x") || strings.HasPrefix(sinSigno, "0X") {
			base = 0
		}
		crudo, err := strconv.ParseInt(token, base, 64)
		if err != nil {
			p.RegistrarLog(fmt.Sprintf("[Error] Literal inválido: %s", token))
			return 0, nil
		}
		return clamp(crudo), nil
	}

	direccion, existe := p.DireccionSimbolo(token)
	if !existe {
		return 0, nil
	}
	return p.mem.Leer(p, direccion)
}

// asegurarVariable devuelve la dirección del símbolo, creándolo si no existe.
// Con la tabla llena devuelve false y deja constancia en la bitácora.
func (p *Proceso) asegurarVariable(nombre string) (string, bool) {
	if direccion, existe := p.DireccionSimbolo(nombre); existe {
		return direccion, true
	}
	direccion, ok := p.mem.AsignarVariable(p, nombre)
	if !ok {
		p.RegistrarLog(fmt.Sprintf("[Advertencia] Tabla de símbolos llena, se ignora la variable %s", nombre))
		return "", false
	}
	return direccion, true
}

func (p *Proceso) ejecutarDeclare(args []string) error {
	var valor uint16
	if len(args) == 2 {
		v, err := p.valor(args[1])
		if err != nil {
			return err
		}
		valor = v
	}

	direccion, ok := p.asegurarVariable(args[0])
	if !ok {
		return nil
	}
	return p.mem.Escribir(p, direccion, valor)
}

func (p *Proceso) ejecutarAritmetica(args []string, signo int64) error {
	a, err := p.valor(args[1])
	if err != nil {
		return err
	}
	b, err := p.valor(args[2])
	if err != nil {
		return err
	}
	resultado := clamp(int64(a) + signo*int64(b))

	direccion, ok := p.asegurarVariable(args[0])
	if !ok {
		return nil
	}
	return p.mem.Escribir(p, direccion, resultado)
}

func (p *Proceso) ejecutarPrint(args []string, nucleoID int) error {
	var mensaje string
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		mensaje = fmt.Sprintf("\"Hello world from %s!\"", p.nombre)
	} else {
		resuelto, err := p.evaluarExpresionPrint(args[0])
		if err != nil {
			return err
		}
		mensaje = resuelto
	}

	if nucleoID >= 0 {
		mensaje = fmt.Sprintf("Core:%d %s", nucleoID, mensaje)
	}
	p.RegistrarLog(mensaje)
	return nil
}

// evaluarExpresionPrint concatena literales entre comillas dobles y valores
// de variables unidos por '+'. Los '+' dentro de comillas no separan.
func (p *Proceso) evaluarExpresionPrint(expr string) (string, error) {
	var b strings.Builder

	for _, segmento := range partirConcatenacion(expr) {
		segmento = strings.TrimSpace(segmento)
		if segmento == "" {
			continue
		}
		if segmento[0] == '"' {
			texto, err := strconv.Unquote(segmento)
			if err != nil {
				texto = strings.Trim(segmento, "\"")
			}
			b.WriteString(texto)
			continue
		}
		valor, err := p.valor(segmento)
		if err != nil {
			return "", err
		}
		b.WriteString(strconv.FormatUint(uint64(valor), 10))
	}
	return b.String(), nil
}

func partirConcatenacion(expr string) []string {
	var segmentos []string
	var actual strings.Builder
	dentroComillas := false
	escapado := false

	for _, r := range expr {
		switch {
		case escapado:
			actual.WriteRune(r)
			escapado = false
		case r == '\\' && dentroComillas:
			actual.WriteRune(r)
			escapado = true
		case r == '"':
			actual.WriteRune(r)
			dentroComillas = !dentroComillas
		case r == '+' && !dentroComillas:
			segmentos = append(segmentos, actual.String())
			actual.Reset()
		default:
			actual.WriteRune(r)
		}
	}
	segmentos = append(segmentos, actual.String())
	return segmentos
}

func (p *Proceso) ejecutarSleep(args []string) error {
	ticks, err := p.valor(args[0])
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// El pc no avanza al dormirse: la misma instrucción se re-ejecuta al
	// despertar y recién entonces cae de largo
	if p.despertarPendiente {
		p.despertarPendiente = false
		return nil
	}
	if ticks == 0 {
		return nil
	}

	p.estado = Durmiendo
	p.tickDespertar = p.reloj.Actual() + uint64(ticks)
	utils.InfoLog.Debug(fmt.Sprintf("## PID: %d - Durmiendo hasta el tick %d", p.pid, p.tickDespertar))
	return nil
}

func (p *Proceso) ejecutarFor(args []string) error {
	repeticiones, err := p.valor(args[0])
	if err != nil {
		return err
	}
	if repeticiones > 1000 {
		repeticiones = 1000
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if repeticiones == 0 {
		p.pc = p.indiceDespuesDelEnd()
		return nil
	}
	if len(p.pilaBucles) >= 3 {
		p.logs = append(p.logs, RegistroLog{
			Momento: time.Now(),
			Mensaje: "[Error] Se superó el anidamiento máximo de FOR, se ignora la instrucción",
		})
		return nil
	}
	p.pilaBucles = append(p.pilaBucles, marcoBucle{inicio: p.pc + 1, restantes: repeticiones})
	return nil
}

// indiceDespuesDelEnd busca el END que cierra el FOR en p.pc y devuelve el
// índice siguiente; sin END de cierre el programa termina
func (p *Proceso) indiceDespuesDelEnd() int {
	profundidad := 1
	for j := p.pc + 1; j < len(p.programa); j++ {
		switch p.programa[j].Codigo {
		case OpFor:
			profundidad++
		case OpEnd:
			profundidad--
			if profundidad == 0 {
				return j + 1
			}
		}
	}
	return len(p.programa)
}

func (p *Proceso) ejecutarEnd() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pilaBucles) == 0 {
		p.logs = append(p.logs, RegistroLog{
			Momento: time.Now(),
			Mensaje: "[Error] END sin FOR correspondiente",
		})
		return
	}

	tope := &p.pilaBucles[len(p.pilaBucles)-1]
	tope.restantes--
	if tope.restantes > 0 {
		p.pc = tope.inicio
		return
	}
	p.pilaBucles = p.pilaBucles[:len(p.pilaBucles)-1]
}

func (p *Proceso) ejecutarRead(args []string) error {
	direccionDestino, ok := p.asegurarVariable(args[0])
	if !ok {
		return nil
	}
	valor, err := p.mem.Leer(p, args[1])
	if err != nil {
		return err
	}
	return p.mem.Escribir(p, direccionDestino, valor)
}

func (p *Proceso) ejecutarWrite(args []string) error {
	valor, err := p.valor(args[1])
	if err != nil {
		return err
	}
	return p.mem.Escribir(p, args[0], valor)
}
