// Package ratelimit fornece adapters HTTP (net/http) para rate limit por janela
// deslizante e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela em memória/Redis, semáforo, métricas)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para headers
//
// Fluxo no endpoint de submissão:
//
//  1. Extrai a chave do cliente (header/XFF/RemoteAddr)
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, delega a resposta para OnReject (429 por padrão)
//  4. Se permitido, chama o próximo handler
package ratelimit
