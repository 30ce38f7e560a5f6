// Package listing define o modelo de domínio do diretório: Listing, Collection,
// o catálogo de valores fechados (províncias, meios de pagamento, categorias),
// a validação de submissões e o filtro por tag/palavra-chave.
//
// O pacote não conhece HTTP nem o armazenamento remoto.
package listing
