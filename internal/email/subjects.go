package email

const (
	subjectWelcome  = "Bem-vindo a VENDEXA!"
	subjectProposal = "Sua proposta personalizada VENDEXA"
	subjectDealWon  = "Pagamento confirmado - Bem-vindo a bordo!"
	subjectFollowUp = "Ainda podemos ajudar sua empresa?"
)
