package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TurnState - состояние одного хода диалога
type TurnState int

const (
	StateIdle TurnState = iota
	StateAwaitingModel
	StateExecutingTools
	StateResponding
)

const (
	// Заглушка из .env.example: ключ "как бы есть", но работать не будет
	placeholderKey = "gsk_tukey_here"

	greeting = "¡Hola! Soy tu asistente financiero de Finanzas Pro. ¿En qué puedo ayudarte hoy?"

	missingKeyMessage = "Error: La API Key de Groq no está configurada correctamente en el archivo .env."

	fallbackReply = "Lo siento, no pude generar una respuesta."
)

// Message - видимое пользователю сообщение диалога
type Message struct {
	ID        string
	Role      string // "user" или "assistant"
	Content   string
	Timestamp time.Time
}

// Assistant ведет диалог с моделью, выполняя не более одного раунда
// инструментов на каждое сообщение пользователя.
type Assistant struct {
	token  string
	client CompletionClient
	bridge *ToolBridge
	nowFn  func() time.Time

	state    TurnState
	messages []Message
}

func New(token string, client CompletionClient, bridge *ToolBridge) *Assistant {
	a := &Assistant{
		token:  token,
		client: client,
		bridge: bridge,
		nowFn:  time.Now,
		state:  StateIdle,
	}
	a.messages = append(a.messages, Message{
		ID:        uuid.New().String(),
		Role:      "assistant",
		Content:   greeting,
		Timestamp: a.nowFn(),
	})
	return a
}

// Messages возвращает историю диалога (включая приветствие).
func (a *Assistant) Messages() []Message {
	return a.messages
}

// State возвращает текущее состояние хода.
func (a *Assistant) State() TurnState {
	return a.state
}

// Send обрабатывает одно сообщение пользователя и возвращает ответ
// ассистента. Сбои вывода не пробрасываются: они превращаются в видимые
// пользователю сообщения об ошибке, и диалог продолжается.
func (a *Assistant) Send(ctx context.Context, text string) Message {
	text = strings.TrimSpace(text)
	if text == "" {
		return a.appendAssistant(fallbackReply)
	}

	a.messages = append(a.messages, Message{
		ID:        uuid.New().String(),
		Role:      "user",
		Content:   text,
		Timestamp: a.nowFn(),
	})

	// Без рабочего ключа к модели не обращаемся вовсе
	if a.token == "" || a.token == placeholderKey {
		return a.appendAssistant(missingKeyMessage)
	}

	a.state = StateAwaitingModel
	defer func() { a.state = StateIdle }()

	history := a.apiHistory()

	response, err := a.client.CreateCompletion(ctx, history, financeTools(), "auto")
	if err != nil {
		return a.appendAssistant(fmt.Sprintf("Error: %v", err))
	}

	if len(response.ToolCalls) > 0 {
		a.state = StateExecutingTools

		toolMessages := append(history, *response)
		for _, call := range response.ToolCalls {
			result := a.bridge.Execute(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(`{"error":"resultado no serializable"}`)
			}
			toolMessages = append(toolMessages, ChatMessage{
				Role:       "tool",
				Name:       call.Function.Name,
				ToolCallID: call.ID,
				Content:    string(payload),
			})
		}

		a.state = StateAwaitingModel

		// Второй ответ принимается как финальный: если модель снова
		// запросит инструменты, они выполняться не будут
		second, err := a.client.CreateCompletion(ctx, toolMessages, nil, "")
		if err != nil {
			return a.appendAssistant(fmt.Sprintf("Error: %v", err))
		}
		response = second
	}

	a.state = StateResponding

	content := response.Content
	if content == "" {
		content = fallbackReply
	}
	return a.appendAssistant(content)
}

func (a *Assistant) appendAssistant(content string) Message {
	msg := Message{
		ID:        uuid.New().String(),
		Role:      "assistant",
		Content:   content,
		Timestamp: a.nowFn(),
	}
	a.messages = append(a.messages, msg)
	return msg
}

// apiHistory собирает сообщения для API: системная преамбула плюс вся
// переписка, кроме приветствия.
func (a *Assistant) apiHistory() []ChatMessage {
	history := []ChatMessage{{Role: "system", Content: systemPrompt(a.nowFn())}}
	for i, msg := range a.messages {
		if i == 0 {
			continue // приветствие в API не уходит
		}
		history = append(history, ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return history
}

var spanishWeekdays = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func spanishDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// Преамбула фиксирует валюту, сегодняшнюю дату, запрет на запись и
// краткий стиль ответов.
func systemPrompt(now time.Time) string {
	return fmt.Sprintf(`Eres un asistente de finanzas personales llamado FinanzasAI.
Hoy es %s.
Tu objetivo es ayudar al usuario a entender sus finanzas usando las herramientas disponibles.
IMPORTANTE: Responde SIEMPRE de forma BREVE, DIRECTA y CONCISA. Ve directo a la respuesta.
NO USES TABLAS NI FORMATOS COMPLEJOS. Di las cosas como texto seguido. Ejemplo: "Tus ingresos de este mes son S/ X provenientes de Y".
NOTA IMPORTANTE: La moneda oficial es SOLES (S/). Usa siempre S/.
CRÍTICO: NO puedes crear, editar ni eliminar datos. Solo puedes CONSULTAR información. Si el usuario pide cambiar algo, dile amablemente que no tienes permisos de escritura.
CÁLCULO DE AHORRO: Si el usuario pregunta "cuánto voy ahorrando este mes", usa 'get_monthly_details' para el mes actual, suma los ingresos, resta los gastos, y dile el resultado.`,
		spanishDate(now))
}
