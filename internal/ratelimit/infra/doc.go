// Package infra implementa os contratos de domain.
//
//   - MemoryWindow: log de instantes por chave, com janitor (uma instância)
//   - RedisWindow: sorted set por chave + script Lua (várias instâncias)
//   - ChanPool: semáforo de submissões em voo
//   - PrometheusRecorder / MemoryRecorder: contagem de decisões
package infra
