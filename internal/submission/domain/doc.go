// Package domain define a taxonomia de erros da submissão e as portas
// (interfaces) usadas pela camada application.
//
// Este pacote não depende de net/http. O mapeamento Kind -> status HTTP fica
// no adapter (pacote submission).
package domain
