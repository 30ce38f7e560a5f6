// Package application contém os casos de uso do diretório: aceitar uma
// submissão (validar -> ler -> anexar -> gravar) e consultar a coleção.
//
// Não conhece net/http; método, rate limit e status ficam no adapter.
package application
