// Package domain define os contratos do controle de abuso da submissão:
// janela deslizante por cliente, vagas de concorrência e registro de decisões.
//
// Sem net/http e sem backend concreto; memória e Redis ficam em infra.
package domain
