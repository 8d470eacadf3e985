package ai

import "fmt"

// LeadProfile carries the lead attributes the prompts personalize on.
type LeadProfile struct {
	Name     string
	Company  string
	Interest string
	Budget   string
}

const (
	planStarter      = "Starter - R$ 297/mes"
	planProfessional = "Professional - R$ 697/mes"
	planEnterprise   = "Enterprise - R$ 1.497/mes"
)

// Greeting returns the deterministic opening message for a new conversation.
// The greeting is fixed on purpose: the first touch must work even when the
// text-generation collaborator is down.
func Greeting(name string) string {
	if name == "" {
		name = "Cliente"
	}
	return fmt.Sprintf(`Ola %s!

Sou o assistente virtual da VENDEXA. Estou aqui para ajuda-lo a encontrar a melhor solucao para suas necessidades.

Como posso ajuda-lo hoje?`, name)
}

func salesSystemPrompt(profile LeadProfile) string {
	company := orDefault(profile.Company, "Nao informado")
	interest := orDefault(profile.Interest, "Automacao de vendas")
	budget := orDefault(profile.Budget, "A definir")

	return fmt.Sprintf(`Voce e um assistente de vendas inteligente da VENDEXA.

SOBRE A VENDEXA:
VENDEXA e um Sistema de Vendas Autonomo com IA que automatiza 100%% do processo de vendas.

PLANOS E PRECOS:

1. Plano %s
   - Ate 100 leads/mes
   - 1.000 conversas/mes com IA
   - Email marketing automatizado
   - Ideal para: Pequenas empresas e startups

2. Plano %s (MAIS POPULAR)
   - Ate 500 leads/mes
   - 5.000 conversas/mes com IA
   - Email + WhatsApp automatizado
   - Suporte prioritario
   - Ideal para: Medias empresas

3. Plano %s
   - Leads ILIMITADOS
   - Conversas ILIMITADAS
   - IA personalizada para seu negocio
   - Suporte 24/7 dedicado
   - Ideal para: Grandes empresas

SEU OBJETIVO:
1. Entender as necessidades do cliente
2. Recomendar o plano ideal baseado no tamanho da empresa
3. Responder objecoes de forma profissional
4. Conduzir ao fechamento da venda

Informacoes do Lead:
- Nome: %s
- Empresa: %s
- Interesse: %s
- Orcamento: %s

IMPORTANTE:
- Seja profissional, objetivo e cordial
- Seja persuasivo mas nao insistente
- Sempre mencione que temos teste gratis de 7 dias
- Ao final, sempre ofereca agendar uma demonstracao

Responda em portugues do Brasil.`,
		planStarter, planProfessional, planEnterprise,
		orDefault(profile.Name, "Cliente"), company, interest, budget)
}

func intentPrompt(message string) string {
	return fmt.Sprintf(`Analise a seguinte mensagem de um cliente e identifique:
1. Intencao principal (interest, question, objection, ready_to_buy, goodbye)
2. Nivel de interesse (low, medium, high)
3. Sentimento (positive, neutral, negative)

Mensagem: %q

Responda APENAS em formato JSON:
{
    "intent": "...",
    "interest_level": "...",
    "sentiment": "...",
    "summary": "..."
}`, message)
}

func proposalPrompt(profile LeadProfile, requirements string) string {
	return fmt.Sprintf(`Crie uma proposta comercial profissional baseada nas seguintes informacoes:

Cliente: %s
Empresa: %s
Requisitos: %s
Orcamento: %s

A proposta deve incluir:
1. Saudacao personalizada
2. Resumo das necessidades identificadas
3. Solucao proposta
4. Beneficios principais
5. Investimento
6. Proximos passos
7. Chamada para acao

Formate de forma profissional e persuasiva.`,
		orDefault(profile.Name, "Cliente"),
		orDefault(profile.Company, "Nao informado"),
		orDefault(requirements, "Automacao do processo de vendas"),
		orDefault(profile.Budget, "A definir"))
}

// FallbackProposal renders a deterministic proposal used when the
// text-generation collaborator is unavailable.
func FallbackProposal(profile LeadProfile) string {
	return fmt.Sprintf(`Ola %s,

Obrigado pelo seu interesse na VENDEXA. Com base na nossa conversa, preparamos as seguintes opcoes para %s:

1. Plano %s
2. Plano %s (MAIS POPULAR)
3. Plano %s

Todos os planos incluem teste gratis de 7 dias, sem compromisso.

Proximos passos: responda esta mensagem ou agende uma demonstracao com nossa equipe.

Atenciosamente,
Equipe VENDEXA`,
		orDefault(profile.Name, "Cliente"),
		orDefault(profile.Company, "sua empresa"),
		planStarter, planProfessional, planEnterprise)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
