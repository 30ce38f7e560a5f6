// Package submission é o adapter HTTP do diretório.
//
// Cadeia do endpoint de submissão:
//
//	method gate (405) -> rate limit (429) -> concorrência (503) -> handler
//
// O handler decodifica o corpo, chama application.Service.Submit e traduz o
// resultado. Todo erro passa por writeError, que mapeia domain.Kind para
// status em um único lugar.
package submission
