package help

const QuickstartYAML = `# lmc Quick Start

pipeline:
  - "lmc fetch <lang>     download and unzip the raw corpus"
  - "lmc prepare <lang>   normalize lines and count words across shard workers"
  - "lmc build <lang>     lmplz -> filter -> build_binary, then the alphabet"

commands:
  fetch: |
    lmc fetch de
    lmc fetch de --url https://example.org/de.txt.gz --force

  prepare: |
    lmc prepare de --workers 8 --block-size 100M
    lmc prepare de --input my-corpus.txt --vocabulary-size 500000 --prune-factor 10
    lmc prepare en --config prepare.yaml --strip-markup
    lmc prepare pt --force --alpha 0.93 --beta 1.18

  build: |
    lmc build de --kenlm-bin /opt/kenlm/bin
    lmc build de --force --alphabet-mode utf8
    lmc build de --alpha 0.8

  inspect: |
    lmc languages
    lmc detect lmc-models/de/unprepared.txt --sample-lines 500
    lmc runs --limit 5
    lmc run <run-id>

config_file: |
  language: de
  workers: 8
  block_size: 64M
  vocabulary_size: 500000
  prune_factor: 10
  max_keys: 100000
  mmap: true
  alpha: 0.93

artifacts:
  - "lmc-models/<lang>/raw.txt.gz (downloaded corpus)"
  - "lmc-models/<lang>/unprepared.txt (unzipped corpus)"
  - "lmc-models/<lang>/prepared.txt (normalized sentences, one per line)"
  - "lmc-models/<lang>/vocabulary.txt (most frequent words, one per line)"
  - "lmc-models/<lang>/manifest.yaml (settings, counters, hashes)"
  - "lmc-models/<lang>/lm.binary, alphabet.txt (decoder inputs)"

run_invariants:
  - "Lines belong to the shard holding their first byte; none are lost or duplicated"
  - "Vocabulary order: count descending, then word ascending"
  - "Counts are exact while distinct words stay below vocabulary_size * prune_factor"
  - "Interrupted runs leave partial files on disk and are recorded as cancelled"
  - "A stage is skipped while its outputs are newer than its inputs (--force redoes it)"

error_behavior:
  - "Invalid UTF-8 lines are skipped and counted"
  - "A shard read error fails the run"
  - "Exit codes: 0=success, 1=error, 130=interrupted"
`
