package driver

const (
	SaveBatchQuery = `
		MERGE (b:Batch {batch_id: $batch_id})
		SET b.reference_id = $reference_id,
			b.created_at = $created_at,
			b.candidate_count = $candidate_count
		RETURN b.batch_id AS batch_id
	`

	SaveParagraphNodeQuery = `
		MATCH (b:Batch {batch_id: $batch_id})
		MERGE (p:Paragraph {batch_id: $batch_id, id: $id})
		SET p.role = $role,
			p.num_facts = $num_facts,
			p.num_entities = $num_entities,
			p.lexical_entropy = $lexical_entropy,
			p.classification = $classification,
			p.centrality = $centrality
		MERGE (b)-[:CONTAINS]->(p)
		RETURN p.id AS id
	`

	SaveConsistencyEdgeQuery = `
		MATCH (a:Paragraph {batch_id: $batch_id, id: $source_id})
		MATCH (b:Paragraph {batch_id: $batch_id, id: $target_id})
		MERGE (a)-[e:CONSISTENT_WITH {batch_id: $batch_id}]->(b)
		SET e.weight = $weight,
			e.avg_hallucination = $avg_hallucination,
			e.tag = $tag
		RETURN e.weight AS weight
	`

	GetBatchRankingQuery = `
		MATCH (:Batch {batch_id: $batch_id})-[:CONTAINS]->(p:Paragraph)
		RETURN p.id AS id, p.role AS role, p.classification AS classification, p.centrality AS centrality
		ORDER BY p.centrality DESC, p.id ASC
	`

	DeleteBatchQuery = `
		MATCH (b:Batch {batch_id: $batch_id})
		OPTIONAL MATCH (b)-[:CONTAINS]->(p:Paragraph)
		DETACH DELETE p, b
	`
)
