// Package duplicate observa a digitação do campo de CPF e consulta o
// registro em busca de cadastros existentes, com debounce para não
// martelar a API a cada tecla.
package duplicate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/validation"
)

// Checker consulta uma pessoa pelo CPF; nil sem erro significa inexistente
type Checker interface {
	CheckByCPF(ctx context.Context, cpf string) (*model.Person, error)
}

// Result é o desfecho de uma verificação de duplicidade
type Result struct {
	CPF         string
	IsDuplicate bool
	Match       *model.Person
	Err         error
}

// Watcher recebe o valor corrente do campo de CPF e emite resultados de
// duplicidade. Só consulta quando o valor limpo tem 11 dígitos e ficou
// estável pelo período de debounce; valores incompletos limpam o estado.
type Watcher struct {
	checker  Checker
	debounce time.Duration
	ignoreID int64
	logger   *zap.Logger

	input   chan string
	results chan Result
	done    chan struct{}
}

// NewWatcher cria o observador. ignoreID diferente de zero exclui a própria
// pessoa em edição do resultado; zero é modo de cadastro novo.
func NewWatcher(checker Checker, debounce time.Duration, ignoreID int64, logger *zap.Logger) *Watcher {
	w := &Watcher{
		checker:  checker,
		debounce: debounce,
		ignoreID: ignoreID,
		logger:   logger,
		input:    make(chan string, 16),
		results:  make(chan Result, 1),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// Input entrega o valor corrente do campo; chamadas após Close são ignoradas
func (w *Watcher) Input(cpf string) {
	select {
	case w.input <- cpf:
	case <-w.done:
	}
}

// Results é o canal de saída das verificações
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Close encerra o observador; uma verificação em curso é abandonada
func (w *Watcher) Close() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	var pending string
	armed := false

	for {
		select {
		case raw := <-w.input:
			cpf := validation.CleanCPF(raw)
			if armed {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				armed = false
			}
			if len(cpf) != validation.CPFLength {
				// Valor incompleto limpa qualquer resultado anterior
				w.emit(Result{CPF: cpf})
				continue
			}
			pending = cpf
			timer.Reset(w.debounce)
			armed = true

		case <-timer.C:
			armed = false
			w.check(pending)

		case <-w.done:
			if armed {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) check(cpf string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	match, err := w.checker.CheckByCPF(ctx, cpf)
	if err != nil {
		// Falha de verificação nunca bloqueia o formulário
		w.logger.Debug("verificação de CPF falhou", zap.Error(err))
		w.emit(Result{CPF: cpf, Err: err})
		return
	}
	if match != nil && match.ID == w.ignoreID {
		// A própria pessoa em edição não conta como duplicata
		match = nil
	}
	w.emit(Result{CPF: cpf, IsDuplicate: match != nil, Match: match})
}

// emit substitui qualquer resultado ainda não consumido pelo mais recente
func (w *Watcher) emit(r Result) {
	for {
		select {
		case w.results <- r:
			return
		case <-w.done:
			return
		default:
			select {
			case <-w.results:
			default:
			}
		}
	}
}
